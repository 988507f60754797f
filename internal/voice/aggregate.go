package voice

import (
	"sort"
	"strconv"
)

// Leaderboard size for interruption points and item rankings.
const leaderboardLimit = 10

// defaultPreset is the replay-key segment used when an event carries no
// voice preset. Preset keys are user-configured slugs validated elsewhere
// to never equal this sentinel.
const defaultPreset = "default"

// FilterAll disables a filter dimension, same as leaving it empty.
const FilterAll = "all"

// Filter narrows the event set before aggregation. Empty or "all" values
// match everything. The reason filter only constrains events that carry a
// reason; plays and ends pass through it untouched.
type Filter struct {
	Engine   string
	Language string
	Reason   string
}

func filterActive(v string) bool {
	return v != "" && v != FilterAll
}

func (f Filter) match(e *Event) bool {
	if filterActive(f.Engine) && e.Engine != f.Engine {
		return false
	}
	if filterActive(f.Language) && e.Language != f.Language {
		return false
	}
	if filterActive(f.Reason) && e.Reason != "" && e.Reason != f.Reason {
		return false
	}
	return true
}

// InterruptionPoint is a lesson item where playback was stopped for a
// given reason, ranked by how often.
type InterruptionPoint struct {
	LessonSlug string `json:"lesson_slug"`
	LevelIndex int    `json:"level_index"`
	ItemIndex  int    `json:"item_index"`
	Reason     string `json:"reason"`
	Count      int    `json:"count"`
}

// ItemCount tracks play and stop totals for one lesson item.
type ItemCount struct {
	LessonSlug string `json:"lesson_slug"`
	LevelIndex int    `json:"level_index"`
	ItemIndex  int    `json:"item_index"`
	Plays      int    `json:"plays"`
	Stops      int    `json:"stops"`
}

// Leaderboard holds the item rankings.
type Leaderboard struct {
	MostPlayed  []ItemCount `json:"most_played"`
	MostStopped []ItemCount `json:"most_stopped"`
}

// Result is the computed voice telemetry report. A fresh value per request.
type Result struct {
	TotalEvents           int                 `json:"total_events"`
	TotalPlays            int                 `json:"total_plays"`
	TotalEnds             int                 `json:"total_ends"`
	TotalStops            int                 `json:"total_stops"`
	CompletionRate        float64             `json:"completion_rate"`
	ReplayRate            float64             `json:"replay_rate"`
	TopInterruptionPoints []InterruptionPoint `json:"top_interruption_points"`
	ItemLeaderboard       Leaderboard         `json:"item_leaderboard"`
}

// itemKey identifies one lesson item. Null-byte separators keep composite
// keys collision-free when slugs contain separators themselves.
func itemKey(e *Event) string {
	return e.LessonSlug + "\x00" + strconv.Itoa(e.LevelIndex) + "\x00" + strconv.Itoa(e.ItemIndex)
}

// replayKey identifies an exact play configuration: the same item spoken by
// the same engine, voice and rate. A repeated key is a replay.
func replayKey(e *Event) string {
	preset := e.VoicePreset
	if preset == "" {
		preset = defaultPreset
	}
	return itemKey(e) + "\x00" + e.Engine + "\x00" + e.Language + "\x00" +
		preset + "\x00" + strconv.FormatFloat(e.Rate, 'f', -1, 64)
}

// Aggregate computes the telemetry report over parsed events.
// Rates are zero when there are no plays; there is no division by zero.
func Aggregate(events []Event, filter Filter) *Result {
	result := &Result{
		TopInterruptionPoints: []InterruptionPoint{},
		ItemLeaderboard: Leaderboard{
			MostPlayed:  []ItemCount{},
			MostStopped: []ItemCount{},
		},
	}

	// Grouping maps plus first-seen key order so ties rank deterministically.
	distinctPlays := make(map[string]struct{})
	interruptions := make(map[string]*InterruptionPoint)
	var interruptionOrder []string
	items := make(map[string]*ItemCount)
	var itemOrder []string

	for i := range events {
		e := &events[i]
		if !filter.match(e) {
			continue
		}
		result.TotalEvents++

		switch e.Event {
		case EventPlay:
			result.TotalPlays++
			distinctPlays[replayKey(e)] = struct{}{}

			key := itemKey(e)
			item, ok := items[key]
			if !ok {
				item = &ItemCount{LessonSlug: e.LessonSlug, LevelIndex: e.LevelIndex, ItemIndex: e.ItemIndex}
				items[key] = item
				itemOrder = append(itemOrder, key)
			}
			item.Plays++

		case EventEnd:
			result.TotalEnds++

		case EventStop:
			result.TotalStops++

			key := itemKey(e)
			item, ok := items[key]
			if !ok {
				item = &ItemCount{LessonSlug: e.LessonSlug, LevelIndex: e.LevelIndex, ItemIndex: e.ItemIndex}
				items[key] = item
				itemOrder = append(itemOrder, key)
			}
			item.Stops++

			if e.Reason != "" {
				rkey := key + "\x00" + e.Reason
				point, ok := interruptions[rkey]
				if !ok {
					point = &InterruptionPoint{
						LessonSlug: e.LessonSlug,
						LevelIndex: e.LevelIndex,
						ItemIndex:  e.ItemIndex,
						Reason:     e.Reason,
					}
					interruptions[rkey] = point
					interruptionOrder = append(interruptionOrder, rkey)
				}
				point.Count++
			}
		}
	}

	if result.TotalPlays > 0 {
		result.CompletionRate = float64(result.TotalEnds) / float64(result.TotalPlays)
		result.ReplayRate = float64(result.TotalPlays-len(distinctPlays)) / float64(result.TotalPlays)
	}

	points := make([]InterruptionPoint, 0, len(interruptionOrder))
	for _, key := range interruptionOrder {
		points = append(points, *interruptions[key])
	}
	sort.SliceStable(points, func(i, j int) bool {
		return points[i].Count > points[j].Count
	})
	if len(points) > leaderboardLimit {
		points = points[:leaderboardLimit]
	}
	result.TopInterruptionPoints = points

	counts := make([]ItemCount, 0, len(itemOrder))
	for _, key := range itemOrder {
		counts = append(counts, *items[key])
	}

	mostPlayed := make([]ItemCount, len(counts))
	copy(mostPlayed, counts)
	sort.SliceStable(mostPlayed, func(i, j int) bool {
		return mostPlayed[i].Plays > mostPlayed[j].Plays
	})
	if len(mostPlayed) > leaderboardLimit {
		mostPlayed = mostPlayed[:leaderboardLimit]
	}
	result.ItemLeaderboard.MostPlayed = mostPlayed

	mostStopped := make([]ItemCount, 0, len(counts))
	for _, c := range counts {
		if c.Stops > 0 {
			mostStopped = append(mostStopped, c)
		}
	}
	sort.SliceStable(mostStopped, func(i, j int) bool {
		return mostStopped[i].Stops > mostStopped[j].Stops
	})
	if len(mostStopped) > leaderboardLimit {
		mostStopped = mostStopped[:leaderboardLimit]
	}
	result.ItemLeaderboard.MostStopped = mostStopped

	return result
}
