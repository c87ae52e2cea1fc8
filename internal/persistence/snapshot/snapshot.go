package snapshot

import (
	"bufio"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"

	"github.com/klauspost/compress/zstd"

	"guildsim.dev/internal/sim/economy"
	"guildsim.dev/internal/sim/model"
	"guildsim.dev/internal/sim/tuning"
)

const Version = 1

type Header struct {
	Version int    `json:"version"`
	GuildID string `json:"guild_id"`
	Week    uint64 `json:"week"`
	Season  int    `json:"season"`
}

// SnapshotV1 is the full state graph of one world. Slices are sorted by
// ID so equal worlds serialize to equal bytes.
type SnapshotV1 struct {
	Header Header `json:"header"`

	Seed          int64         `json:"seed"`
	Tuning        tuning.Tuning `json:"tuning"`
	CatalogDigest string        `json:"catalog_digest"`

	Calendar        model.Calendar  `json:"calendar"`
	Guild           economy.Guild   `json:"guild"`
	Agents          []model.Agent   `json:"agents"`
	Missions        []model.Mission `json:"missions"`
	Recruits        []model.Agent   `json:"recruits"`
	LastRefreshWeek uint64          `json:"last_refresh_week"`

	Counters CountersV1 `json:"counters"`
}

type CountersV1 struct {
	NextID uint64 `json:"next_id"`
}

// WriteSnapshot writes a zstd stream holding one JSON header line followed
// by the JSON body.
func WriteSnapshot(path string, snap SnapshotV1) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0o644)
	if err != nil {
		return err
	}
	defer f.Close()

	enc, err := zstd.NewWriter(f, zstd.WithEncoderLevel(zstd.SpeedDefault))
	if err != nil {
		return err
	}
	defer enc.Close()

	bw := bufio.NewWriterSize(enc, 256*1024)

	hb, _ := json.Marshal(snap.Header)
	if _, err := bw.Write(hb); err != nil {
		return err
	}
	if err := bw.WriteByte('\n'); err != nil {
		return err
	}
	if err := json.NewEncoder(bw).Encode(&snap); err != nil {
		return fmt.Errorf("json encode: %w", err)
	}
	if err := bw.Flush(); err != nil {
		return fmt.Errorf("flush: %w", err)
	}
	if err := enc.Close(); err != nil {
		return fmt.Errorf("zstd close: %w", err)
	}
	return f.Close()
}

func ReadSnapshot(path string) (SnapshotV1, error) {
	var snap SnapshotV1
	f, err := os.Open(path)
	if err != nil {
		return snap, err
	}
	defer f.Close()

	dec, err := zstd.NewReader(f)
	if err != nil {
		return snap, err
	}
	defer dec.Close()

	br := bufio.NewReaderSize(dec, 256*1024)

	// The header is repeated inside the body.
	if _, err := br.ReadBytes('\n'); err != nil {
		return snap, fmt.Errorf("read header: %w", err)
	}
	if err := json.NewDecoder(br).Decode(&snap); err != nil {
		return snap, fmt.Errorf("json decode: %w", err)
	}
	if snap.Header.Version != Version {
		return snap, fmt.Errorf("unsupported snapshot version %d", snap.Header.Version)
	}
	return snap, nil
}

// ReadHeader decodes only the leading header line.
func ReadHeader(path string) (Header, error) {
	var h Header
	f, err := os.Open(path)
	if err != nil {
		return h, err
	}
	defer f.Close()

	dec, err := zstd.NewReader(f)
	if err != nil {
		return h, err
	}
	defer dec.Close()

	line, err := bufio.NewReader(dec).ReadBytes('\n')
	if err != nil {
		return h, fmt.Errorf("read header: %w", err)
	}
	if err := json.Unmarshal(line, &h); err != nil {
		return h, fmt.Errorf("decode header: %w", err)
	}
	return h, nil
}

// FileName is the canonical name for a snapshot taken after week.
func FileName(week uint64) string { return fmt.Sprintf("%d.snap.zst", week) }

// List returns the snapshot files in dir ordered by week.
func List(dir string) ([]string, error) {
	ents, err := os.ReadDir(dir)
	if err != nil {
		return nil, err
	}
	type entry struct {
		week uint64
		path string
	}
	var found []entry
	for _, e := range ents {
		if e.IsDir() {
			continue
		}
		name := e.Name()
		if !strings.HasSuffix(name, ".snap.zst") {
			continue
		}
		week, err := strconv.ParseUint(strings.TrimSuffix(name, ".snap.zst"), 10, 64)
		if err != nil {
			continue
		}
		found = append(found, entry{week: week, path: filepath.Join(dir, name)})
	}
	sort.Slice(found, func(i, j int) bool { return found[i].week < found[j].week })
	out := make([]string, 0, len(found))
	for _, e := range found {
		out = append(out, e.path)
	}
	return out, nil
}

// Latest returns the newest snapshot in dir, or "" if there is none.
func Latest(dir string) string {
	all, err := List(dir)
	if err != nil || len(all) == 0 {
		return ""
	}
	return all[len(all)-1]
}
