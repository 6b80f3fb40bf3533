package telemetry

import (
	"fmt"
	"log/slog"

	"github.com/pthm-cable/shoal/config"
)

// BookmarkType identifies the type of bookmark.
type BookmarkType string

const (
	BookmarkPopulationCrash  BookmarkType = "population_crash"
	BookmarkExtinction       BookmarkType = "extinction"
	BookmarkSpeciation       BookmarkType = "speciation"
	BookmarkBirthBoom        BookmarkType = "birth_boom"
	BookmarkStablePopulation BookmarkType = "stable_population"
)

// Bookmark represents an automatically triggered bookmark.
type Bookmark struct {
	Type        BookmarkType `csv:"type"`
	Tick        int32        `csv:"tick"`
	Description string       `csv:"description"`
}

// LogBookmark logs the bookmark using slog.
func (b Bookmark) LogBookmark() {
	slog.Info("bookmark",
		"type", string(b.Type),
		"tick", b.Tick,
		"description", b.Description,
	)
}

// BookmarkDetector detects interesting moments in the simulation.
type BookmarkDetector struct {
	thresholds config.BookmarksConfig

	// Rolling history (circular buffer)
	history     []WindowStats
	ordered     []WindowStats
	historySize int
	historyIdx  int
	historyFull bool

	// State tracking
	recentPeak         int // peak fish count since the last crash
	stableWindowsCount int // consecutive windows with a stable population
}

// NewBookmarkDetector creates a detector with the given history size.
func NewBookmarkDetector(historySize int, thresholds config.BookmarksConfig) *BookmarkDetector {
	if historySize < 5 {
		historySize = 5 // minimum for stable population detection
	}
	return &BookmarkDetector{
		thresholds:  thresholds,
		history:     make([]WindowStats, historySize),
		ordered:     make([]WindowStats, 0, historySize),
		historySize: historySize,
	}
}

// Check analyzes the latest stats and returns any triggered bookmarks.
func (bd *BookmarkDetector) Check(stats WindowStats) []Bookmark {
	var bookmarks []Bookmark

	if bd.historyFull || bd.historyIdx > 0 {
		if b := bd.checkExtinction(stats); b != nil {
			bookmarks = append(bookmarks, *b)
		}
		if b := bd.checkPopulationCrash(stats); b != nil {
			bookmarks = append(bookmarks, *b)
		}
		if b := bd.checkSpeciation(stats); b != nil {
			bookmarks = append(bookmarks, *b)
		}
		if b := bd.checkBirthBoom(stats); b != nil {
			bookmarks = append(bookmarks, *b)
		}
		if b := bd.checkStablePopulation(stats); b != nil {
			bookmarks = append(bookmarks, *b)
		}
	}

	bd.addToHistory(stats)

	if stats.FishCount > bd.recentPeak {
		bd.recentPeak = stats.FishCount
	}

	return bookmarks
}

func (bd *BookmarkDetector) addToHistory(stats WindowStats) {
	bd.history[bd.historyIdx] = stats
	bd.historyIdx = (bd.historyIdx + 1) % bd.historySize
	if bd.historyIdx == 0 {
		bd.historyFull = true
	}
}

// getHistory returns the recorded windows oldest first.
func (bd *BookmarkDetector) getHistory() []WindowStats {
	if !bd.historyFull {
		return bd.history[:bd.historyIdx]
	}
	bd.ordered = bd.ordered[:0]
	bd.ordered = append(bd.ordered, bd.history[bd.historyIdx:]...)
	bd.ordered = append(bd.ordered, bd.history[:bd.historyIdx]...)
	return bd.ordered
}

func (bd *BookmarkDetector) last() WindowStats {
	h := bd.getHistory()
	return h[len(h)-1]
}

func (bd *BookmarkDetector) checkExtinction(stats WindowStats) *Bookmark {
	prev := bd.last()
	if stats.FishCount != 0 || prev.FishCount == 0 {
		return nil
	}
	return &Bookmark{
		Type:        BookmarkExtinction,
		Tick:        stats.WindowEndTick,
		Description: fmt.Sprintf("Population went extinct (was %d)", prev.FishCount),
	}
}

func (bd *BookmarkDetector) checkPopulationCrash(stats WindowStats) *Bookmark {
	if bd.recentPeak == 0 {
		return nil
	}

	th := bd.thresholds.PopulationCrash
	dropPercent := 1.0 - float64(stats.FishCount)/float64(bd.recentPeak)
	if dropPercent > th.DropPercent && stats.FishCount < bd.recentPeak-th.MinDrop {
		// Reset peak after crash
		oldPeak := bd.recentPeak
		bd.recentPeak = stats.FishCount

		return &Bookmark{
			Type:        BookmarkPopulationCrash,
			Tick:        stats.WindowEndTick,
			Description: fmt.Sprintf("Population crashed %.0f%% from peak %d to %d", dropPercent*100, oldPeak, stats.FishCount),
		}
	}

	return nil
}

func (bd *BookmarkDetector) checkSpeciation(stats WindowStats) *Bookmark {
	prev := bd.last()
	gained := stats.SpeciesClusters - prev.SpeciesClusters
	if prev.SpeciesClusters == 0 || gained < bd.thresholds.Speciation.MinNewSpecies {
		return nil
	}
	return &Bookmark{
		Type:        BookmarkSpeciation,
		Tick:        stats.WindowEndTick,
		Description: fmt.Sprintf("Species clusters rose from %d to %d", prev.SpeciesClusters, stats.SpeciesClusters),
	}
}

func (bd *BookmarkDetector) checkBirthBoom(stats WindowStats) *Bookmark {
	history := bd.getHistory()
	if len(history) < 3 {
		return nil
	}

	var total int
	for _, h := range history {
		total += h.Births
	}
	avg := float64(total) / float64(len(history))
	if avg == 0 {
		return nil
	}

	th := bd.thresholds.Boom
	if float64(stats.Births) > avg*th.Multiplier && stats.Births >= th.MinBirths {
		return &Bookmark{
			Type:        BookmarkBirthBoom,
			Tick:        stats.WindowEndTick,
			Description: fmt.Sprintf("%d births is %.1fx average (%.1f)", stats.Births, float64(stats.Births)/avg, avg),
		}
	}

	return nil
}

func (bd *BookmarkDetector) checkStablePopulation(stats WindowStats) *Bookmark {
	if stats.FishCount < 10 {
		bd.stableWindowsCount = 0
		return nil
	}

	history := bd.getHistory()
	if len(history) < 4 {
		return nil
	}

	var sum float64
	for _, h := range history[len(history)-4:] {
		sum += float64(h.FishCount)
	}
	mean := sum / 4

	var variance float64
	for _, h := range history[len(history)-4:] {
		d := float64(h.FishCount) - mean
		variance += d * d
	}
	variance /= 4

	cv2 := 0.0
	if mean > 0 {
		cv2 = variance / (mean * mean)
	}

	if cv2 < 0.04 { // CV^2 < 0.04 means CV < 0.2
		bd.stableWindowsCount++
	} else {
		bd.stableWindowsCount = 0
	}

	if bd.stableWindowsCount == 5 { // trigger exactly once at 5 windows
		return &Bookmark{
			Type:        BookmarkStablePopulation,
			Tick:        stats.WindowEndTick,
			Description: fmt.Sprintf("Stable population of %d fish over 5+ windows", stats.FishCount),
		}
	}

	return nil
}
