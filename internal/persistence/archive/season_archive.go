package archive

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"guildsim.dev/internal/persistence/snapshot"
)

type SeasonArchiveMeta struct {
	Season     int    `json:"season"`
	EndWeek    uint64 `json:"end_week"`
	Seed       int64  `json:"seed"`
	GuildID    string `json:"guild_id"`
	GuildName  string `json:"guild_name"`
	Snapshot   string `json:"snapshot"`
	CreatedAt  string `json:"created_at"`
	Treasury   int    `json:"treasury"`
	Debt       int    `json:"debt"`
	Confidence int    `json:"confidence"`
	Roster     int    `json:"roster"`
	Fallen     int    `json:"fallen"`
	Facilities int    `json:"facility_ratings"`
}

// SeasonEnded reports which season a snapshot closes. Snapshots are taken
// after the calendar moves on, so a season-end snapshot points at the first
// week of the next season.
func SeasonEnded(snap snapshot.SnapshotV1) (int, bool) {
	c := snap.Calendar
	if c.Season < 2 || c.Month != 1 || c.WeekOfMonth != 1 {
		return 0, false
	}
	return c.Season - 1, true
}

// ArchiveSeasonSnapshot copies a season-end snapshot into `guildDir/archives/season_<NNN>/`.
// It returns (season, archivedPath, archived=true) when the snapshot represents a season end.
func ArchiveSeasonSnapshot(guildDir, snapshotPath string, snap snapshot.SnapshotV1) (season int, archivedPath string, archived bool, err error) {
	season, ok := SeasonEnded(snap)
	if !ok {
		return 0, "", false, nil
	}

	archiveDir := filepath.Join(guildDir, "archives", fmt.Sprintf("season_%03d", season))
	if err := os.MkdirAll(archiveDir, 0o755); err != nil {
		return 0, "", false, err
	}

	dst := filepath.Join(archiveDir, filepath.Base(snapshotPath))
	if err := copyFile(snapshotPath, dst); err != nil {
		return 0, "", false, err
	}

	meta := Summarize(snap)
	meta.Season = season
	meta.Snapshot = filepath.Base(dst)
	meta.CreatedAt = time.Now().UTC().Format(time.RFC3339Nano)
	if b, err := json.MarshalIndent(meta, "", "  "); err == nil {
		_ = os.WriteFile(filepath.Join(archiveDir, "meta.json"), b, 0o644)
	}

	return season, dst, true, nil
}

// Summarize pulls the headline numbers out of a snapshot.
func Summarize(snap snapshot.SnapshotV1) SeasonArchiveMeta {
	g := snap.Guild
	meta := SeasonArchiveMeta{
		EndWeek:    snap.Header.Week,
		Seed:       snap.Seed,
		GuildID:    g.ID,
		GuildName:  g.Name,
		Treasury:   g.Finances.Treasury,
		Debt:       g.Debt(),
		Confidence: g.Council.Confidence,
		Roster:     len(g.Roster),
	}
	for _, a := range snap.Agents {
		if a.Deceased() {
			meta.Fallen++
		}
	}
	for _, f := range g.Facilities {
		meta.Facilities += f.Rating
	}
	return meta
}

// ReadMeta loads the meta.json of one archived season.
func ReadMeta(guildDir string, season int) (SeasonArchiveMeta, error) {
	var meta SeasonArchiveMeta
	path := filepath.Join(guildDir, "archives", fmt.Sprintf("season_%03d", season), "meta.json")
	b, err := os.ReadFile(path)
	if err != nil {
		return meta, err
	}
	if err := json.Unmarshal(b, &meta); err != nil {
		return meta, fmt.Errorf("%s: %w", path, err)
	}
	return meta, nil
}

func copyFile(src, dst string) error {
	in, err := os.Open(src)
	if err != nil {
		return err
	}
	defer in.Close()

	out, err := os.Create(dst)
	if err != nil {
		return err
	}
	defer func() { _ = out.Close() }()

	if _, err := io.Copy(out, in); err != nil {
		return err
	}
	return out.Close()
}
