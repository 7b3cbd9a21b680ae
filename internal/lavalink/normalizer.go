package lavalink

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/tidwall/gjson"
)

// CPUInterpretation selects how the raw system/process load figures are read.
// Lavalink v4 reports loads as fractions in [0,1]; some forks report direct
// percentages. The two are numerically incompatible, so the choice is made
// at the configuration boundary rather than guessed from the payload.
type CPUInterpretation string

const (
	// CPUFraction treats raw load as a 0..1 fraction and scales by 100.
	CPUFraction CPUInterpretation = "fraction"
	// CPUPercent treats raw load as an already-scaled percentage.
	CPUPercent CPUInterpretation = "percent"
)

// NormalizationError reports a payload that could not be normalized at all.
// Field-level problems never produce one; only a top-level value that is not
// a JSON object does.
type NormalizationError struct {
	Reason      string
	PayloadSize int
	PayloadKind string
}

func (e *NormalizationError) Error() string {
	return fmt.Sprintf("normalize: %s (%s payload, %d bytes)", e.Reason, e.PayloadKind, e.PayloadSize)
}

// Normalizer adapts heterogeneous status payloads into Snapshots.
type Normalizer struct {
	cpu CPUInterpretation
}

// NewNormalizer creates a normalizer using the given CPU load interpretation.
// An unrecognized interpretation falls back to CPUFraction.
func NewNormalizer(cpu CPUInterpretation) *Normalizer {
	if cpu != CPUPercent {
		cpu = CPUFraction
	}
	return &Normalizer{cpu: cpu}
}

// byteUnit tags the unit family a byte-valued probe path is denominated in.
type byteUnit int

const (
	unitBytes byteUnit = iota
	unitMegabytes
)

// byteProbe is one candidate source path for a byte-valued field.
type byteProbe struct {
	path string
	unit byteUnit
}

// Probe tables: per canonical field, an ordered list of candidate paths.
// The first present, defined hit wins. New upstream shapes are added here,
// not as conditional branches.
var (
	uptimeProbes = []string{"uptime", "audio_stats.uptime", "server.uptime_ms"}

	coreProbes       = []string{"cpu.cores", "performance.cpu.cores", "audio_stats.cpu.cores", "system.cpu_count"}
	systemLoadProbes = []string{"cpu.systemLoad", "cpu.system_load", "performance.cpu.system_load", "audio_stats.cpu.system_load"}
	procLoadProbes   = []string{"cpu.lavalinkLoad", "cpu.processLoad", "cpu.process_load", "performance.cpu.process_load", "audio_stats.cpu.process_load"}

	memUsedProbes = []byteProbe{
		{"memory.used", unitBytes},
		{"performance.memory.used", unitBytes},
		{"performance.memory.used_mb", unitMegabytes},
	}
	memFreeProbes = []byteProbe{
		{"memory.free", unitBytes},
		{"performance.memory.free", unitBytes},
		{"performance.memory.free_mb", unitMegabytes},
	}
	memAllocProbes = []byteProbe{
		{"memory.allocated", unitBytes},
		{"performance.memory.allocated", unitBytes},
		{"performance.memory.allocated_mb", unitMegabytes},
	}
	memReservProbes = []byteProbe{
		{"memory.reservable", unitBytes},
		{"performance.memory.reservable", unitBytes},
		{"performance.memory.reservable_mb", unitMegabytes},
	}
	memPercentProbes = []string{"memory.usagePercent", "performance.memory.usage_percent", "audio_stats.memory.usage_percent"}

	playerTotalProbes   = []string{"players", "audio_stats.players.total", "playerStats.total"}
	playerPlayingProbes = []string{"playingPlayers", "audio_stats.players.playing", "playerStats.playing"}
	playerIdleProbes    = []string{"idlePlayers", "audio_stats.players.idle", "playerStats.idle"}

	frameSentProbes     = []string{"frameStats.sent", "audio_stats.frame_analysis.raw.sent", "frame_analysis.raw.sent"}
	frameExpectedProbes = []string{"frameStats.expected", "audio_stats.frame_analysis.raw.expected", "frame_analysis.raw.expected"}
	frameNulledProbes   = []string{"frameStats.nulled", "audio_stats.frame_analysis.raw.nulled", "frame_analysis.raw.nulled"}
	frameDeficitProbes  = []string{"frameStats.deficit", "audio_stats.frame_analysis.raw.deficit", "frame_analysis.raw.deficit"}
	integrityProbes     = []string{"frame_analysis.integrity", "audio_stats.frame_analysis.integrity", "frameStats.integrityPercent"}

	trackListProbes = []string{"tracks", "players_detail", "audio_stats.tracks"}

	sourceProbes  = []string{"sourceManagers", "capabilities.sources", "info.sourceManagers"}
	filterProbes  = []string{"filters", "capabilities.filters", "info.filters"}
	versionProbes = []string{"version.semver", "info.version.semver", "version"}

	healthStatusProbes = []string{"health.status", "server_health.status"}
	healthScoreProbes  = []string{"health.score", "server_health.score"}
	healthGradeProbes  = []string{"health.grade", "server_health.grade"}
)

// Normalize converts a raw payload into a Snapshot. It never panics and
// individual field failures degrade to documented defaults; only a payload
// whose top level is not a JSON object yields a NormalizationError.
func (n *Normalizer) Normalize(raw []byte) (*Snapshot, error) {
	if !gjson.ValidBytes(raw) {
		return nil, &NormalizationError{
			Reason:      "malformed-payload",
			PayloadSize: len(raw),
			PayloadKind: "invalid-json",
		}
	}

	root := gjson.ParseBytes(raw)
	if !root.IsObject() {
		return nil, &NormalizationError{
			Reason:      "malformed-payload",
			PayloadSize: len(raw),
			PayloadKind: root.Type.String(),
		}
	}

	// Response envelope: some deployments wrap the metrics object.
	if data := root.Get("data"); data.IsObject() && root.Get("success").Exists() {
		root = data
	}

	s := &Snapshot{
		CapturedAt: time.Now(),
		LatencyMs:  -1,
		UptimeMs:   firstInt(root, uptimeProbes),
		CPU: CPUStats{
			SystemLoadPercent:  n.loadPercent(root, systemLoadProbes),
			ProcessLoadPercent: n.loadPercent(root, procLoadProbes),
			Cores:              int(firstInt(root, coreProbes)),
		},
		Players: normalizePlayers(root),
		Frames:  normalizeFrames(root),
		Tracks:  normalizeTracks(root),
		Caps: Capabilities{
			Sources: firstStrings(root, sourceProbes),
			Filters: firstStrings(root, filterProbes),
		},
		Version: firstString(root, versionProbes),
	}
	s.Memory = normalizeMemory(root)
	s.Health = normalizeHealth(root, s)

	return s, nil
}

// loadPercent reads a CPU load figure and applies the configured
// interpretation. Results are intentionally un-clamped.
func (n *Normalizer) loadPercent(root gjson.Result, paths []string) float64 {
	res, ok := firstHit(root, paths)
	if !ok {
		return 0
	}
	v := parsePercentValue(res)
	if n.cpu == CPUFraction {
		v *= 100
	}
	return v
}

func normalizePlayers(root gjson.Result) PlayerStats {
	p := PlayerStats{
		Total:   int(firstInt(root, playerTotalProbes)),
		Playing: int(firstInt(root, playerPlayingProbes)),
	}
	if p.Total < 0 {
		p.Total = 0
	}
	if p.Playing < 0 {
		p.Playing = 0
	}

	// Prefer the upstream idle figure when present and sane.
	if res, ok := firstHit(root, playerIdleProbes); ok && res.Int() >= 0 {
		p.Idle = int(res.Int())
	} else {
		p.Idle = p.Total - p.Playing
		if p.Idle < 0 {
			p.Idle = 0
		}
	}
	return p
}

func normalizeFrames(root gjson.Result) FrameStats {
	f := FrameStats{
		Sent:     nonNegative(firstInt(root, frameSentProbes)),
		Expected: nonNegative(firstInt(root, frameExpectedProbes)),
		Nulled:   nonNegative(firstInt(root, frameNulledProbes)),
		Deficit:  nonNegative(firstInt(root, frameDeficitProbes)),
	}

	if res, ok := firstHit(root, integrityProbes); ok {
		f.IntegrityPercent = parsePercentValue(res)
	} else if f.Expected > 0 {
		f.IntegrityPercent = float64(f.Sent) / float64(f.Expected) * 100
	}
	return f
}

func normalizeMemory(root gjson.Result) MemoryStats {
	m := MemoryStats{
		UsedBytes:       firstBytes(root, memUsedProbes),
		FreeBytes:       firstBytes(root, memFreeProbes),
		AllocatedBytes:  firstBytes(root, memAllocProbes),
		ReservableBytes: firstBytes(root, memReservProbes),
	}

	if res, ok := firstHit(root, memPercentProbes); ok {
		m.UsagePercent = parsePercentValue(res)
	} else if m.AllocatedBytes > 0 {
		m.UsagePercent = float64(m.UsedBytes) / float64(m.AllocatedBytes) * 100
	}
	return m
}

func normalizeTracks(root gjson.Result) []Track {
	list, ok := firstHit(root, trackListProbes)
	if !ok || !list.IsArray() {
		return nil
	}

	var tracks []Track
	list.ForEach(func(_, item gjson.Result) bool {
		tracks = append(tracks, Track{
			GuildID:    firstString(item, []string{"guildId", "guild_id"}),
			Title:      firstString(item, []string{"title", "info.title", "track.info.title"}),
			Author:     firstString(item, []string{"author", "info.author", "track.info.author"}),
			ArtworkURL: firstString(item, []string{"artworkUrl", "artwork_url", "info.artworkUrl", "track.info.artworkUrl"}),
			Source:     firstString(item, []string{"source", "sourceName", "info.sourceName", "track.info.sourceName"}),
			PositionMs: nonNegative(firstInt(item, []string{"position", "state.position", "position_ms"})),
			DurationMs: nonNegative(firstInt(item, []string{"duration", "length", "info.length", "track.info.length"})),
			PingMs:     firstInt(item, []string{"ping", "state.ping", "voice.ping"}),
			Connected:  firstBool(item, []string{"connected", "state.connected"}),
		})
		return true
	})
	return tracks
}

func normalizeHealth(root gjson.Result, s *Snapshot) Health {
	h := Health{Status: HealthUnknown, Score: -1}

	if res, ok := firstHit(root, healthStatusProbes); ok {
		switch strings.ToLower(res.String()) {
		case "healthy", "ok", "online":
			h.Status = HealthHealthy
		case "warning", "degraded":
			h.Status = HealthWarning
		case "critical", "unhealthy":
			h.Status = HealthCritical
		}
	}
	if res, ok := firstHit(root, healthScoreProbes); ok {
		h.Score = parsePercentValue(res)
	}
	h.Grade = firstString(root, healthGradeProbes)

	if h.Status == HealthUnknown {
		h.Status = DeriveHealth(s)
	}
	return h
}

// firstHit probes the paths in order and returns the first defined result.
func firstHit(root gjson.Result, paths []string) (gjson.Result, bool) {
	for _, p := range paths {
		if res := root.Get(p); res.Exists() {
			return res, true
		}
	}
	return gjson.Result{}, false
}

func firstInt(root gjson.Result, paths []string) int64 {
	if res, ok := firstHit(root, paths); ok {
		return res.Int()
	}
	return 0
}

func firstString(root gjson.Result, paths []string) string {
	if res, ok := firstHit(root, paths); ok && res.Type == gjson.String {
		return res.String()
	}
	return ""
}

func firstBool(root gjson.Result, paths []string) bool {
	if res, ok := firstHit(root, paths); ok {
		return res.Bool()
	}
	return false
}

func firstStrings(root gjson.Result, paths []string) []string {
	res, ok := firstHit(root, paths)
	if !ok || !res.IsArray() {
		return nil
	}
	var out []string
	res.ForEach(func(_, item gjson.Result) bool {
		if s := item.String(); s != "" {
			out = append(out, s)
		}
		return true
	})
	return out
}

// firstBytes probes byte-valued paths and converts everything to bytes.
// A value may be a raw number in the probe's unit, a pre-formatted human
// string ("512.5 MB"), or an object carrying a raw figure next to a
// formatted sibling.
func firstBytes(root gjson.Result, probes []byteProbe) int64 {
	for _, pr := range probes {
		res := root.Get(pr.path)
		if !res.Exists() {
			continue
		}
		b := parseByteValue(res, pr.unit)
		if b < 0 {
			continue
		}
		return b
	}
	return 0
}

// byteSuffixes maps human-format suffixes to multipliers.
var byteSuffixes = []struct {
	suffix     string
	multiplier float64
}{
	{"TB", 1 << 40},
	{"GB", 1 << 30},
	{"MB", 1 << 20},
	{"KB", 1 << 10},
	{"B", 1},
}

func parseByteValue(res gjson.Result, unit byteUnit) int64 {
	switch {
	case res.IsObject():
		// A formatted sibling marks the pre-formatted family; the raw
		// figure travels alongside it.
		if raw := res.Get("raw"); raw.Exists() {
			return parseByteValue(raw, unit)
		}
		if b := res.Get("bytes"); b.Exists() {
			return parseByteValue(b, unitBytes)
		}
		if f := res.Get("formatted"); f.Exists() {
			return parseFormattedBytes(f.String())
		}
		return -1

	case res.Type == gjson.String:
		return parseFormattedBytes(res.String())

	case res.Type == gjson.Number:
		v := res.Float()
		if v < 0 {
			return 0
		}
		if unit == unitMegabytes {
			v *= 1 << 20
		}
		return int64(v)
	}
	return -1
}

// parseFormattedBytes parses human-formatted byte strings like "1.5 GB".
// Unparseable input yields 0, never an error.
func parseFormattedBytes(s string) int64 {
	s = strings.TrimSpace(s)
	upper := strings.ToUpper(s)
	for _, bs := range byteSuffixes {
		if strings.HasSuffix(upper, bs.suffix) {
			numPart := strings.TrimSpace(upper[:len(upper)-len(bs.suffix)])
			v, err := strconv.ParseFloat(numPart, 64)
			if err != nil || v < 0 {
				return 0
			}
			return int64(v * bs.multiplier)
		}
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil || v < 0 {
		return 0
	}
	return int64(v)
}

// parsePercentValue reads a numeric field that may arrive as a bare number
// or a formatted string ("92.26%"). Trailing non-numeric characters are
// stripped; unparseable input yields 0.
func parsePercentValue(res gjson.Result) float64 {
	if res.Type == gjson.Number {
		return res.Float()
	}
	s := strings.TrimSpace(res.String())

	end := len(s)
	for end > 0 {
		c := s[end-1]
		if (c >= '0' && c <= '9') || c == '.' {
			break
		}
		end--
	}
	v, err := strconv.ParseFloat(strings.TrimSpace(s[:end]), 64)
	if err != nil {
		return 0
	}
	return v
}

func nonNegative(v int64) int64 {
	if v < 0 {
		return 0
	}
	return v
}
