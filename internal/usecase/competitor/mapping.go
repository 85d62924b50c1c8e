package competitor

import (
	"log/slog"
	"sort"
	"strings"
	"unicode/utf8"

	"github.com/LavaJover/shvark-rms-service/internal/domain"
	"github.com/agnivade/levenshtein"
	"golang.org/x/text/cases"
)

// ============= СТРАТЕГИИ СОПОСТАВЛЕНИЯ НОМЕРОВ =============

// MappingStrategy сопоставляет метку номера конкурента с каноническим типом номера.
type MappingStrategy interface {
	Name() string
	Priority() int
	// Match returns the canonical room type id and a score in [0,1].
	Match(competitorID, label string) (roomTypeID string, score float64, ok bool)
}

// Match описывает успешное сопоставление.
type Match struct {
	RoomTypeID string
	Strategy   string
	Score      float64
}

var folder = cases.Fold()

// normalize приводит метку к нижнему регистру, "_" считается пробелом.
func normalize(s string) string {
	s = strings.ReplaceAll(folder.String(s), "_", " ")
	return strings.Join(strings.Fields(s), " ")
}

// trimRoomSuffix убирает хвостовое "room": "Club King Room" -> "club king".
func trimRoomSuffix(key string) string {
	if trimmed, ok := strings.CutSuffix(key, " room"); ok && trimmed != "" {
		return trimmed
	}
	return key
}

// ExactStrategy: таблица соответствий конкурента, затем канонические id и названия
// (в том числе без хвостового "room").
type ExactStrategy struct {
	table     map[string]map[string]string
	canonical map[string]string
}

func NewExactStrategy(table map[string]map[string]string, roomTypes []*domain.RoomType) *ExactStrategy {
	s := &ExactStrategy{
		table:     make(map[string]map[string]string, len(table)),
		canonical: make(map[string]string, len(roomTypes)*2),
	}
	for competitorID, labels := range table {
		folded := make(map[string]string, len(labels))
		for label, roomTypeID := range labels {
			folded[normalize(label)] = roomTypeID
		}
		s.table[normalize(competitorID)] = folded
	}
	for _, rt := range roomTypes {
		s.canonical[normalize(rt.ID)] = rt.ID
		if rt.Name != "" {
			s.canonical[normalize(rt.Name)] = rt.ID
		}
	}
	return s
}

func (s *ExactStrategy) Name() string  { return "exact" }
func (s *ExactStrategy) Priority() int { return 100 }

func (s *ExactStrategy) Match(competitorID, label string) (string, float64, bool) {
	key := normalize(label)
	if labels, ok := s.table[normalize(competitorID)]; ok {
		if id, ok := labels[key]; ok {
			return id, 1, true
		}
	}
	if id, ok := s.canonical[key]; ok {
		return id, 1, true
	}
	if id, ok := s.canonical[trimRoomSuffix(key)]; ok {
		return id, 1, true
	}
	return "", 0, false
}

// SimilarityStrategy выбирает ближайший по Левенштейну канонический тип номера.
type SimilarityStrategy struct {
	threshold  float64
	candidates []similarityCandidate
}

type similarityCandidate struct {
	roomTypeID string
	text       string
}

func NewSimilarityStrategy(threshold float64, roomTypes []*domain.RoomType) *SimilarityStrategy {
	s := &SimilarityStrategy{threshold: threshold}
	for _, rt := range roomTypes {
		s.candidates = append(s.candidates, similarityCandidate{rt.ID, normalize(rt.ID)})
		if rt.Name != "" {
			s.candidates = append(s.candidates, similarityCandidate{rt.ID, normalize(rt.Name)})
		}
	}
	return s
}

func (s *SimilarityStrategy) Name() string  { return "similarity" }
func (s *SimilarityStrategy) Priority() int { return 10 }

func (s *SimilarityStrategy) Match(_, label string) (string, float64, bool) {
	key := normalize(label)
	bestID, bestScore := "", 0.0
	for _, c := range s.candidates {
		score := Similarity(key, c.text)
		// при равенстве счёта выигрывает меньший id
		if score > bestScore || (score == bestScore && bestID != "" && c.roomTypeID < bestID) {
			bestID, bestScore = c.roomTypeID, score
		}
	}
	if bestID == "" || bestScore < s.threshold {
		return "", bestScore, false
	}
	return bestID, bestScore, true
}

// Similarity is 1 - levenshtein(a,b)/max(len(a),len(b)), counted in runes.
func Similarity(a, b string) float64 {
	longest := utf8.RuneCountInString(a)
	if n := utf8.RuneCountInString(b); n > longest {
		longest = n
	}
	if longest == 0 {
		return 1
	}
	return 1 - float64(levenshtein.ComputeDistance(a, b))/float64(longest)
}

// ============= РЕЕСТР СТРАТЕГИЙ =============

type Mapper struct {
	strategies []MappingStrategy
	logger     *slog.Logger
}

func NewMapper(logger *slog.Logger) *Mapper {
	if logger == nil {
		logger = slog.Default()
	}
	return &Mapper{logger: logger}
}

// NewDefaultMapper регистрирует exact и similarity стратегии.
func NewDefaultMapper(table map[string]map[string]string, threshold float64, roomTypes []*domain.RoomType, logger *slog.Logger) *Mapper {
	m := NewMapper(logger)
	m.RegisterStrategy(NewExactStrategy(table, roomTypes))
	m.RegisterStrategy(NewSimilarityStrategy(threshold, roomTypes))
	return m
}

// RegisterStrategy регистрирует новую стратегию
func (m *Mapper) RegisterStrategy(strategy MappingStrategy) {
	m.strategies = append(m.strategies, strategy)
	sort.SliceStable(m.strategies, func(i, j int) bool {
		return m.strategies[i].Priority() > m.strategies[j].Priority()
	})
	m.logger.Debug("Registered mapping strategy", "name", strategy.Name(), "priority", strategy.Priority())
}

func (m *Mapper) Strategies() []string {
	names := make([]string, 0, len(m.strategies))
	for _, s := range m.strategies {
		names = append(names, s.Name())
	}
	return names
}

// Map пробует стратегии по убыванию приоритета. Промахи считает вызывающий,
// здесь они пишутся только в debug.
func (m *Mapper) Map(competitorID, label string) (Match, bool) {
	bestScore := 0.0
	for _, s := range m.strategies {
		id, score, ok := s.Match(competitorID, label)
		if ok {
			return Match{RoomTypeID: id, Strategy: s.Name(), Score: score}, true
		}
		if score > bestScore {
			bestScore = score
		}
	}
	m.logger.Debug("Competitor room mapping miss",
		"competitor_id", competitorID,
		"label", label,
		"best_score", bestScore)
	return Match{}, false
}
