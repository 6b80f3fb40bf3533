package telemetry

import (
	"testing"

	"github.com/pthm-cable/shoal/config"
)

func init() {
	config.MustInit("")
}

func newDetector() *BookmarkDetector {
	return NewBookmarkDetector(config.Cfg().Telemetry.BookmarkHistorySize, config.Cfg().Bookmarks)
}

func hasBookmark(bookmarks []Bookmark, typ BookmarkType) bool {
	for _, bm := range bookmarks {
		if bm.Type == typ {
			return true
		}
	}
	return false
}

func TestBookmarkDetector_PopulationCrash(t *testing.T) {
	bd := newDetector()

	for i := 0; i < 5; i++ {
		bd.Check(WindowStats{WindowEndTick: int32(i * 100), FishCount: 100})
	}

	bookmarks := bd.Check(WindowStats{WindowEndTick: 500, FishCount: 40})
	if !hasBookmark(bookmarks, BookmarkPopulationCrash) {
		t.Error("expected population_crash bookmark")
	}

	// peak resets after a crash
	bookmarks = bd.Check(WindowStats{WindowEndTick: 600, FishCount: 38})
	if hasBookmark(bookmarks, BookmarkPopulationCrash) {
		t.Error("crash reported twice for the same drop")
	}
}

func TestBookmarkDetector_Extinction(t *testing.T) {
	bd := newDetector()
	bd.Check(WindowStats{WindowEndTick: 100, FishCount: 3})

	bookmarks := bd.Check(WindowStats{WindowEndTick: 200, FishCount: 0})
	if !hasBookmark(bookmarks, BookmarkExtinction) {
		t.Error("expected extinction bookmark")
	}

	bookmarks = bd.Check(WindowStats{WindowEndTick: 300, FishCount: 0})
	if hasBookmark(bookmarks, BookmarkExtinction) {
		t.Error("extinction reported while already extinct")
	}
}

func TestBookmarkDetector_Speciation(t *testing.T) {
	bd := newDetector()
	bd.Check(WindowStats{WindowEndTick: 100, FishCount: 50, SpeciesClusters: 1})

	bookmarks := bd.Check(WindowStats{WindowEndTick: 200, FishCount: 50, SpeciesClusters: 2})
	if hasBookmark(bookmarks, BookmarkSpeciation) {
		t.Error("single new cluster should stay under the threshold")
	}

	bookmarks = bd.Check(WindowStats{WindowEndTick: 300, FishCount: 50, SpeciesClusters: 4})
	if !hasBookmark(bookmarks, BookmarkSpeciation) {
		t.Error("expected speciation bookmark")
	}
}

func TestBookmarkDetector_BirthBoom(t *testing.T) {
	bd := newDetector()

	for i := 0; i < 5; i++ {
		bd.Check(WindowStats{WindowEndTick: int32(i * 100), FishCount: 50, Births: 5})
	}

	bookmarks := bd.Check(WindowStats{WindowEndTick: 500, FishCount: 50, Births: 30})
	if !hasBookmark(bookmarks, BookmarkBirthBoom) {
		t.Error("expected birth_boom bookmark")
	}
}

func TestBookmarkDetector_StablePopulation(t *testing.T) {
	bd := newDetector()

	fired := 0
	for i := 0; i < 12; i++ {
		bookmarks := bd.Check(WindowStats{WindowEndTick: int32(i * 100), FishCount: 80})
		if hasBookmark(bookmarks, BookmarkStablePopulation) {
			fired++
		}
	}
	if fired != 1 {
		t.Errorf("stable_population fired %d times, want exactly 1", fired)
	}
}

func TestBookmarkDetector_HistoryOrder(t *testing.T) {
	bd := NewBookmarkDetector(5, config.Cfg().Bookmarks)
	for i := 0; i < 8; i++ {
		bd.Check(WindowStats{WindowEndTick: int32(i)})
	}

	h := bd.getHistory()
	for i := 1; i < len(h); i++ {
		if h[i].WindowEndTick <= h[i-1].WindowEndTick {
			t.Fatalf("history out of order: %v", h)
		}
	}
	if h[len(h)-1].WindowEndTick != 7 {
		t.Errorf("latest window = %d, want 7", h[len(h)-1].WindowEndTick)
	}
}
