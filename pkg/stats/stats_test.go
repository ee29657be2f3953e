package stats

import (
	"math/rand"
	"testing"

	"cloud.google.com/go/civil"

	"github.com/matzehuels/heatposter/pkg/errors"
	"github.com/matzehuels/heatposter/pkg/series"
)

func mustSeries(t *testing.T, values map[string]float64) *series.DaySeries {
	t.Helper()
	s := series.New()
	for k, v := range values {
		d, err := civil.ParseDate(k)
		if err != nil {
			t.Fatal(err)
		}
		if err := s.Set(d, series.Scalar(v)); err != nil {
			t.Fatal(err)
		}
	}
	return s
}

func TestComputeScenarioStreaks(t *testing.T) {
	s := mustSeries(t, map[string]float64{
		"2023-01-01": 1,
		"2023-01-02": 1,
		"2023-01-03": 0,
		"2023-01-04": 1,
	})

	table, err := Compute(s, series.NewYearSet(2023), "")
	if err != nil {
		t.Fatal(err)
	}
	got := table[2023]

	if got.Count != 3 || got.Total != 3 || got.Average != 1.0 {
		t.Errorf("count/total/average = %d/%v/%v, want 3/3/1", got.Count, got.Total, got.Average)
	}
	if got.LongestStreak != 2 {
		t.Errorf("LongestStreak = %d, want 2", got.LongestStreak)
	}
	if got.CurrentStreak != 1 {
		t.Errorf("CurrentStreak = %d, want 1", got.CurrentStreak)
	}
	if got.Max.Float64 != 1 || got.Min.Float64 != 1 || !got.Max.Valid || !got.Min.Valid {
		t.Errorf("Max/Min = %v/%v, want 1/1", got.Max, got.Min)
	}
}

func TestComputeEmptyYear(t *testing.T) {
	table, err := Compute(series.New(), series.NewYearSet(2023), "")
	if err != nil {
		t.Fatal(err)
	}
	got := table[2023]
	if got.Count != 0 || got.Total != 0 || got.Average != 0 || got.StandardDeviation != 0 {
		t.Errorf("empty year stats = %+v", got)
	}
	if got.LongestStreak != 0 || got.CurrentStreak != 0 {
		t.Errorf("empty year streaks = %d/%d", got.LongestStreak, got.CurrentStreak)
	}
	if got.Max.Valid || got.Min.Valid {
		t.Errorf("Max/Min should be absent, got %v/%v", got.Max, got.Min)
	}
	if got.HasData() {
		t.Error("HasData() = true for an empty year")
	}
}

func TestComputeStandardDeviation(t *testing.T) {
	s := mustSeries(t, map[string]float64{
		"2022-03-01": 5,
		"2022-06-01": 10,
		"2022-09-01": 15,
	})
	table, err := Compute(s, series.NewYearSet(2022), "")
	if err != nil {
		t.Fatal(err)
	}
	got := table[2022]
	if got.Average != 10 {
		t.Errorf("Average = %v, want 10", got.Average)
	}
	if got.StandardDeviation != 4.08 {
		t.Errorf("StandardDeviation = %v, want 4.08", got.StandardDeviation)
	}
	if got.Max.Float64 != 15 || got.Min.Float64 != 5 {
		t.Errorf("Max/Min = %v/%v, want 15/5", got.Max.Float64, got.Min.Float64)
	}
}

func TestComputeRounding(t *testing.T) {
	s := mustSeries(t, map[string]float64{
		"2023-01-01": 1,
		"2023-01-02": 1,
		"2023-01-03": 2,
	})
	table, _ := Compute(s, series.NewYearSet(2023), "")
	if got := table[2023].Average; got != 1.33 {
		t.Errorf("Average = %v, want 1.33", got)
	}
	if got := table[2023].StandardDeviation; got != 0.47 {
		t.Errorf("StandardDeviation = %v, want 0.47", got)
	}
}

func TestComputeStreaksDoNotCrossYears(t *testing.T) {
	s := mustSeries(t, map[string]float64{
		"2022-12-30": 1,
		"2022-12-31": 1,
		"2023-01-01": 1,
	})
	table, err := Compute(s, series.NewYearSet(2022, 2023), "")
	if err != nil {
		t.Fatal(err)
	}
	if got := table[2022].LongestStreak; got != 2 {
		t.Errorf("2022 LongestStreak = %d, want 2", got)
	}
	if got := table[2022].CurrentStreak; got != 2 {
		t.Errorf("2022 CurrentStreak = %d, want 2 (year ended before as-of)", got)
	}
	if got := table[2023].LongestStreak; got != 1 {
		t.Errorf("2023 LongestStreak = %d, want 1", got)
	}
	if got := table[2023].CurrentStreak; got != 1 {
		t.Errorf("2023 CurrentStreak = %d, want 1", got)
	}
}

func TestComputeCurrentStreakAsOf(t *testing.T) {
	s := mustSeries(t, map[string]float64{
		"2023-05-01": 1,
		"2023-05-02": 1,
		"2023-05-03": 1,
	})

	tests := []struct {
		name string
		asOf string
		want int
	}{
		{"middle of run", "2023-05-02", 2},
		{"end of run", "2023-05-03", 3},
		{"gap after run", "2023-05-04", 0},
		{"before year", "2022-06-01", 0},
		{"after year", "2024-01-10", 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			asOf, _ := civil.ParseDate(tt.asOf)
			table, err := Compute(s, series.NewYearSet(2023), "", WithAsOf(asOf))
			if err != nil {
				t.Fatal(err)
			}
			if got := table[2023].CurrentStreak; got != tt.want {
				t.Errorf("CurrentStreak = %d, want %d", got, tt.want)
			}
		})
	}
}

func TestComputeLongestStreakIsMaximalRun(t *testing.T) {
	rng := rand.New(rand.NewSource(7))
	for trial := 0; trial < 20; trial++ {
		s := series.New()
		days := series.Days(2024)
		active := make([]bool, len(days))
		for i, d := range days {
			if rng.Intn(3) > 0 {
				active[i] = true
				_ = s.Set(d, series.Scalar(float64(rng.Intn(9)+1)))
			}
		}

		want, run := 0, 0
		for _, a := range active {
			if a {
				run++
				if run > want {
					want = run
				}
			} else {
				run = 0
			}
		}

		table, err := Compute(s, series.NewYearSet(2024), "")
		if err != nil {
			t.Fatal(err)
		}
		got := table[2024]
		if got.LongestStreak != want {
			t.Fatalf("trial %d: LongestStreak = %d, want %d", trial, got.LongestStreak, want)
		}
		if got.CurrentStreak > got.LongestStreak {
			t.Fatalf("trial %d: CurrentStreak %d > LongestStreak %d", trial, got.CurrentStreak, got.LongestStreak)
		}
	}
}

func TestComputeLeapDayCounts(t *testing.T) {
	s := mustSeries(t, map[string]float64{"2024-02-29": 4})
	table, err := Compute(s, series.NewYearSet(2024), "")
	if err != nil {
		t.Fatal(err)
	}
	if table[2024].Count != 1 || table[2024].Total != 4 {
		t.Errorf("leap day not visited: %+v", table[2024])
	}
}

func TestComputePerType(t *testing.T) {
	s := series.New()
	d, _ := civil.ParseDate("2023-02-01")
	_ = s.Set(d, series.ByType(map[string]float64{"run": 3}))

	all, err := ComputeAll(s, series.NewYearSet(2023), []string{"run", "read"})
	if err != nil {
		t.Fatal(err)
	}
	if all["run"][2023].Total != 3 {
		t.Errorf("run total = %v, want 3", all["run"][2023].Total)
	}
	if all["read"][2023].Count != 0 || all["read"][2023].Max.Valid {
		t.Errorf("read stats = %+v, want empty", all["read"][2023])
	}
}

func TestComputePreconditions(t *testing.T) {
	if _, err := Compute(series.New(), nil, ""); !errors.Is(err, errors.ErrCodeEmptyYears) {
		t.Errorf("empty years: err = %v", err)
	}
	if _, err := Compute(series.New(), series.YearSet{0}, ""); !errors.Is(err, errors.ErrCodeInvalidYear) {
		t.Errorf("year 0: err = %v", err)
	}
	if _, err := ComputeAll(series.New(), series.NewYearSet(2023), nil); !errors.Is(err, errors.ErrCodeEmptyTypes) {
		t.Errorf("empty types: err = %v", err)
	}
}

func TestTable(t *testing.T) {
	s := mustSeries(t, map[string]float64{"2021-01-01": 2, "2023-01-01": 3})
	table, _ := Compute(s, series.NewYearSet(2023, 2021, 2022), "")
	years := table.Years()
	if len(years) != 3 || years[0] != 2021 || years[2] != 2023 {
		t.Errorf("Years() = %v", years)
	}
	if table.Total() != 5 {
		t.Errorf("Total() = %v, want 5", table.Total())
	}
}
