package telemetry

import (
	"log/slog"
	"sort"

	"gonum.org/v1/gonum/stat"
)

// WindowStats holds aggregated statistics for a time window.
type WindowStats struct {
	WindowStartTick int32   `csv:"-"`
	WindowEndTick   int32   `csv:"window_end"`
	SimTimeSec      float64 `csv:"sim_time"`

	// Population counts at window end
	FishCount     int `csv:"fish"`
	PlanktonCount int `csv:"plankton"`

	// Events during window
	Births        int `csv:"births"`
	Reproductions int `csv:"reproductions"`
	Respawns      int `csv:"respawns"`
	DeathsStarved int `csv:"deaths_starved"`
	DeathsAged    int `csv:"deaths_aged"`
	DeathsEaten   int `csv:"deaths_eaten"`
	PlanktonEaten int `csv:"plankton_eaten"`
	FishEaten     int `csv:"fish_eaten"`
	MaxGeneration int `csv:"max_generation"`
	ReadyToBreed  int `csv:"ready_to_breed"`

	// Energy flow during window
	PlanktonFat     float64 `csv:"plankton_fat"`
	PredationFat    float64 `csv:"predation_fat"`
	ReproductionFat float64 `csv:"reproduction_fat"`

	// Fat distribution (sampled at window end)
	FatMean float64 `csv:"fat_mean"`
	FatP10  float64 `csv:"fat_p10"`
	FatP50  float64 `csv:"fat_p50"`
	FatP90  float64 `csv:"fat_p90"`

	MassMean float64 `csv:"mass_mean"`
	AgeMean  float64 `csv:"age_mean"`

	// Gene distribution
	AdultMassMean float64 `csv:"adult_mass_mean"`
	AdultMassStd  float64 `csv:"adult_mass_std"`
	AdultMassP10  float64 `csv:"adult_mass_p10"`
	AdultMassP50  float64 `csv:"adult_mass_p50"`
	AdultMassP90  float64 `csv:"adult_mass_p90"`

	MuscleRatioMean float64 `csv:"muscle_ratio_mean"`
	MuscleRatioStd  float64 `csv:"muscle_ratio_std"`
	MuscleRatioP10  float64 `csv:"muscle_ratio_p10"`
	MuscleRatioP50  float64 `csv:"muscle_ratio_p50"`
	MuscleRatioP90  float64 `csv:"muscle_ratio_p90"`

	// Connected clusters of the pairwise species relation
	SpeciesClusters int `csv:"species_clusters"`
}

// Distribution summarizes a sample.
type Distribution struct {
	Mean, Std     float64
	P10, P50, P90 float64
}

// Percentile calculates the p-th percentile of a sorted slice.
// p should be in [0, 1]. Returns 0 if slice is empty.
func Percentile(sorted []float64, p float64) float64 {
	n := len(sorted)
	if n == 0 {
		return 0
	}
	if p <= 0 {
		return sorted[0]
	}
	if p >= 1 {
		return sorted[n-1]
	}

	// Linear interpolation
	idx := p * float64(n-1)
	lo := int(idx)
	hi := lo + 1
	if hi >= n {
		return sorted[n-1]
	}

	frac := idx - float64(lo)
	return sorted[lo]*(1-frac) + sorted[hi]*frac
}

// ComputeDistribution calculates mean, standard deviation and percentiles.
// values is not modified.
func ComputeDistribution(values []float64) Distribution {
	n := len(values)
	if n == 0 {
		return Distribution{}
	}

	var d Distribution
	if n == 1 {
		d.Mean = values[0]
	} else {
		d.Mean, d.Std = stat.MeanStdDev(values, nil)
	}

	sorted := make([]float64, n)
	copy(sorted, values)
	sort.Float64s(sorted)

	d.P10 = Percentile(sorted, 0.10)
	d.P50 = Percentile(sorted, 0.50)
	d.P90 = Percentile(sorted, 0.90)

	return d
}

// LogValue implements slog.LogValuer for structured logging.
func (s WindowStats) LogValue() slog.Value {
	return slog.GroupValue(
		slog.Int("window_start", int(s.WindowStartTick)),
		slog.Int("window_end", int(s.WindowEndTick)),
		slog.Float64("sim_time", s.SimTimeSec),
		slog.Int("fish", s.FishCount),
		slog.Int("plankton", s.PlanktonCount),
		slog.Int("births", s.Births),
		slog.Int("reproductions", s.Reproductions),
		slog.Int("respawns", s.Respawns),
		slog.Int("deaths_starved", s.DeathsStarved),
		slog.Int("deaths_aged", s.DeathsAged),
		slog.Int("deaths_eaten", s.DeathsEaten),
		slog.Int("plankton_eaten", s.PlanktonEaten),
		slog.Int("fish_eaten", s.FishEaten),
		slog.Int("max_generation", s.MaxGeneration),
		slog.Int("ready_to_breed", s.ReadyToBreed),
		slog.Float64("fat_mean", s.FatMean),
		slog.Float64("fat_p50", s.FatP50),
		slog.Float64("mass_mean", s.MassMean),
		slog.Float64("adult_mass_mean", s.AdultMassMean),
		slog.Float64("adult_mass_std", s.AdultMassStd),
		slog.Float64("muscle_ratio_mean", s.MuscleRatioMean),
		slog.Float64("muscle_ratio_std", s.MuscleRatioStd),
		slog.Int("species_clusters", s.SpeciesClusters),
	)
}

// LogStats logs the window stats using slog.
func (s WindowStats) LogStats() {
	slog.Info("stats",
		"window_end", s.WindowEndTick,
		"sim_time", s.SimTimeSec,
		"fish", s.FishCount,
		"plankton", s.PlanktonCount,
		"births", s.Births,
		"respawns", s.Respawns,
		"deaths_starved", s.DeathsStarved,
		"deaths_aged", s.DeathsAged,
		"deaths_eaten", s.DeathsEaten,
		"plankton_eaten", s.PlanktonEaten,
		"fish_eaten", s.FishEaten,
		"max_generation", s.MaxGeneration,
		"ready_to_breed", s.ReadyToBreed,
		"fat_mean", s.FatMean,
		"fat_p10", s.FatP10,
		"fat_p50", s.FatP50,
		"fat_p90", s.FatP90,
		"adult_mass_mean", s.AdultMassMean,
		"adult_mass_std", s.AdultMassStd,
		"muscle_ratio_mean", s.MuscleRatioMean,
		"muscle_ratio_std", s.MuscleRatioStd,
		"species_clusters", s.SpeciesClusters,
	)
}
