package competitor

import (
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/LavaJover/shvark-rms-service/internal/app/seed"
	"github.com/LavaJover/shvark-rms-service/internal/config"
	"github.com/LavaJover/shvark-rms-service/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var (
	testNow  = time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	testDate = time.Date(2025, 6, 10, 0, 0, 0, 0, time.UTC)

	roomTypes = []*domain.RoomType{
		{ID: "STD", Name: "Standard Room", BaseRate: 200},
		{ID: "DLX", Name: "Deluxe Room", BaseRate: 280},
		{ID: "STE", Name: "Junior Suite", BaseRate: 450},
	}
)

func newMapper(threshold float64) *Mapper {
	table := map[string]map[string]string{
		"grand_plaza": {"Superior King": "DLX"},
	}
	return NewDefaultMapper(table, threshold, roomTypes, nil)
}

func obs(competitor, label string, rate float64, age time.Duration) *domain.CompetitorRate {
	return &domain.CompetitorRate{
		CompetitorID: competitor,
		RoomLabel:    label,
		Date:         testDate,
		Rate:         rate,
		Available:    true,
		ObservedAt:   testNow.Add(-age),
	}
}

func TestMapper_StrategiesOrderedByPriority(t *testing.T) {
	m := newMapper(0.75)
	assert.Equal(t, []string{"exact", "similarity"}, m.Strategies())
}

func TestMapper_Map(t *testing.T) {
	m := newMapper(0.75)

	tests := []struct {
		name       string
		competitor string
		label      string
		wantID     string
		strategy   string
		wantOK     bool
	}{
		{"table entry", "grand_plaza", "superior  KING", "DLX", "exact", true},
		{"canonical name folded", "other", "DELUXE ROOM", "DLX", "exact", true},
		{"canonical id", "other", "ste", "STE", "exact", true},
		{"typo resolved by similarity", "other", "Deluxe Rom", "DLX", "similarity", true},
		{"unrelated label is a miss", "other", "Presidential Villa", "", "", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			match, ok := m.Map(tt.competitor, tt.label)
			require.Equal(t, tt.wantOK, ok)
			assert.Equal(t, tt.wantID, match.RoomTypeID)
			assert.Equal(t, tt.strategy, match.Strategy)
		})
	}
}

func TestMapper_ThresholdIsConfigurable(t *testing.T) {
	for _, threshold := range []float64{0.6, 0.75, 0.9} {
		m := newMapper(threshold)
		score := Similarity(normalize("Deluxe Rom"), normalize("Deluxe Room"))
		_, ok := m.Map("other", "Deluxe Rom")
		assert.Equal(t, score >= threshold, ok, "threshold %v", threshold)
	}
}

func TestMapper_DemoHotelLabels(t *testing.T) {
	cfg, err := config.Load(filepath.Join("..", "..", "..", "config", "local.yaml"))
	require.NoError(t, err)

	for _, threshold := range []float64{0.6, 0.75, 0.9} {
		m := NewDefaultMapper(cfg.Competitor.Mappings, threshold, seed.RoomTypes, nil)

		// метки, которые пишет сидер: "<название> Room"
		for _, competitorID := range seed.Competitors {
			for _, rt := range seed.RoomTypes {
				match, ok := m.Map(competitorID, rt.Name+" Room")
				require.True(t, ok, "%s / %s Room (threshold %v)", competitorID, rt.Name, threshold)
				assert.Equal(t, rt.ID, match.RoomTypeID)
				assert.Equal(t, "exact", match.Strategy)
			}
		}

		// собственные метки конкурентов из таблицы
		for _, tc := range []struct {
			competitor, label, want string
		}{
			{"Voco-Dubai", "Deluxe", "club-twin"},
			{"Hotel Aster", "Suite Room", "two-bedroom"},
			{"Hotel Aster", "business_room", "club-king"},
			{"Palmview", "Garden View", "deluxe"},
			{"Azure Grand", "LUXURY", "executive-suite"},
		} {
			match, ok := m.Map(tc.competitor, tc.label)
			require.True(t, ok, "%s / %s", tc.competitor, tc.label)
			assert.Equal(t, tc.want, match.RoomTypeID, "%s / %s", tc.competitor, tc.label)
		}
	}
}

func TestSimilarity(t *testing.T) {
	assert.Equal(t, 1.0, Similarity("", ""))
	assert.Equal(t, 1.0, Similarity("suite", "suite"))
	assert.InDelta(t, 0.8, Similarity("suite", "suit"), 1e-9)
	assert.Equal(t, 0.0, Similarity("abc", "xyz"))
}

func TestCompute_MissingWhenNoObservations(t *testing.T) {
	idx, err := Compute(Input{RoomType: roomTypes[1], Date: testDate, Now: testNow}, newMapper(0.75), DefaultParams())
	require.NoError(t, err)
	assert.Equal(t, 1.0, idx.Index)
	assert.Equal(t, domain.StalenessMissing, idx.Staleness)
	assert.Zero(t, idx.FreshCompetitors)

	var dq *domain.DataQualityError
	require.True(t, errors.As(DataQuality(idx), &dq))
	assert.ErrorIs(t, dq, domain.ErrNoCompetitorData)
}

func TestCompute_MedianOfLatestPerCompetitor(t *testing.T) {
	observations := []*domain.CompetitorRate{
		obs("a", "Deluxe Room", 240, 30*time.Hour),
		obs("a", "Deluxe Room", 250, time.Hour), // последнее наблюдение "a"
		obs("b", "Superior King", 260, 2*time.Hour),
		obs("grand_plaza", "Superior King", 270, 3*time.Hour),
		obs("c", "Standard Room", 150, time.Hour), // другой тип номера
	}

	idx, err := Compute(Input{RoomType: roomTypes[1], Date: testDate, Now: testNow, Observations: observations}, newMapper(0.75), DefaultParams())
	require.NoError(t, err)

	// "b" не имеет записи в таблице и не похож на каноническое имя
	assert.Equal(t, 2, idx.FreshCompetitors)
	assert.Equal(t, 1, idx.MappingMisses)
	assert.InDelta(t, 260.0, idx.MedianRate, 1e-9)
	assert.InDelta(t, 260.0/280.0, idx.Index, 1e-9)
	assert.Equal(t, domain.StalenessFresh, idx.Staleness)
	assert.NoError(t, DataQuality(idx))
}

func TestCompute_StaleAndSoldOutExcluded(t *testing.T) {
	soldOut := obs("b", "Deluxe Room", 500, time.Hour)
	soldOut.Available = false
	observations := []*domain.CompetitorRate{
		obs("a", "Deluxe Room", 252, time.Hour),
		obs("c", "Deluxe Room", 999, 72*time.Hour),
		soldOut,
	}

	idx, err := Compute(Input{RoomType: roomTypes[1], Date: testDate, Now: testNow, Observations: observations}, newMapper(0.75), DefaultParams())
	require.NoError(t, err)
	assert.Equal(t, 1, idx.FreshCompetitors)
	assert.Equal(t, 1, idx.StaleCompetitors)
	assert.Equal(t, domain.StalenessStale, idx.Staleness)
	assert.InDelta(t, 0.9, idx.Index, 1e-9)
}

func TestCompute_MinCompetitorsParameterised(t *testing.T) {
	observations := []*domain.CompetitorRate{
		obs("a", "Deluxe Room", 250, time.Hour),
		obs("b", "Deluxe Room", 260, time.Hour),
		obs("c", "Deluxe Room", 270, time.Hour),
	}
	for _, tc := range []struct {
		min  int
		want domain.Staleness
	}{
		{1, domain.StalenessFresh},
		{3, domain.StalenessFresh},
		{4, domain.StalenessStale},
	} {
		p := Params{FreshnessWindow: 48 * time.Hour, MinCompetitors: tc.min}
		idx, err := Compute(Input{RoomType: roomTypes[1], Date: testDate, Now: testNow, Observations: observations}, newMapper(0.75), p)
		require.NoError(t, err)
		assert.Equal(t, tc.want, idx.Staleness, "min competitors %d", tc.min)
	}
}

func TestCompute_IgnoresObservationsAfterNow(t *testing.T) {
	future := obs("a", "Deluxe Room", 300, -time.Hour)
	idx, err := Compute(Input{RoomType: roomTypes[1], Date: testDate, Now: testNow, Observations: []*domain.CompetitorRate{future}}, newMapper(0.75), DefaultParams())
	require.NoError(t, err)
	assert.Equal(t, domain.StalenessMissing, idx.Staleness)
}

func TestCompute_MissingBaseRate(t *testing.T) {
	_, err := Compute(Input{RoomType: &domain.RoomType{ID: "X"}, Date: testDate, Now: testNow}, newMapper(0.75), DefaultParams())
	var cfgErr *domain.ConfigurationError
	require.True(t, errors.As(err, &cfgErr))
	assert.ErrorIs(t, err, domain.ErrMissingBaseRate)
	assert.Equal(t, "X", cfgErr.Key.RoomTypeID)
}

func TestMedian(t *testing.T) {
	assert.Equal(t, 0.0, Median(nil))
	assert.Equal(t, 3.0, Median([]float64{5, 1, 3}))
	assert.Equal(t, 2.5, Median([]float64{4, 1, 3, 2}))
}
