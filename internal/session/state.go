package session

import (
	"errors"
	"slices"
	"strings"
	"sync"
	"time"

	"github.com/mishannn/landparser-go/internal/export"
	"github.com/mishannn/landparser-go/internal/listing"
	"github.com/mishannn/landparser-go/internal/pipeline"
	"github.com/mishannn/landparser-go/internal/summary"
)

const (
	DefaultDebounce      = 500 * time.Millisecond
	DefaultMaxSelections = 5

	// UnknownAreaLabel is shown when a run could not name its district.
	UnknownAreaLabel = "지역명 확인 불가"
)

var (
	ErrBusy              = errors.New("a scrape is already running")
	ErrDebounced         = errors.New("scrape triggered too soon after the previous one")
	ErrNoResult          = errors.New("no scrape result yet")
	ErrSelectionExists   = errors.New("selection already exists")
	ErrSelectionLimit    = errors.New("selection limit reached")
	ErrSelectionNotFound = errors.New("selection not found")
)

type ViewOptions struct {
	ExcludeLowFloors bool
	SortKeys         []listing.SortKey
	Ascending        bool
}

// View is the current result after the low-floor filter and sorting.
type View struct {
	AreaName         string        `json:"areaName"`
	Division         string        `json:"division"`
	Neighborhood     string        `json:"neighborhood"`
	ExcludeLowFloors bool          `json:"excludeLowFloors"`
	Signal           string        `json:"signal"`
	Rows             []listing.Row `json:"rows"`
	Summary          []summary.Row `json:"summary"`
}

// State is the single dashboard session: a busy flag with debounce, the last result and saved selections.
type State struct {
	mu            sync.Mutex
	now           func() time.Time
	debounce      time.Duration
	maxSelections int

	busy        bool
	lastTrigger time.Time
	current     *pipeline.Result
	selections  []export.Selection
}

func NewState(debounce time.Duration, maxSelections int) *State {
	if maxSelections < 1 {
		maxSelections = DefaultMaxSelections
	}

	return &State{
		now:           time.Now,
		debounce:      debounce,
		maxSelections: maxSelections,
	}
}

// Begin claims the session for a new scrape and clears the previous result.
func (s *State) Begin() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.busy {
		return ErrBusy
	}

	now := s.now()
	if !s.lastTrigger.IsZero() && now.Sub(s.lastTrigger) < s.debounce {
		return ErrDebounced
	}

	s.lastTrigger = now
	s.busy = true
	s.current = nil
	return nil
}

func (s *State) Finish(result pipeline.Result) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.busy = false
	s.current = &result
}

func (s *State) Busy() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.busy
}

func splitAreaName(name string) (string, string) {
	division, neighborhood, found := strings.Cut(name, " ")
	if !found || name == pipeline.UnknownDistrict {
		return pipeline.UnknownDistrict, pipeline.UnknownDistrict
	}
	return division, neighborhood
}

func (s *State) CurrentView(opts ViewOptions) (View, error) {
	s.mu.Lock()
	current := s.current
	s.mu.Unlock()

	if current == nil {
		return View{}, ErrNoResult
	}

	areaName := current.DistrictName
	if areaName == "" || areaName == pipeline.UnknownDistrict {
		areaName = UnknownAreaLabel
	}
	division, neighborhood := splitAreaName(current.DistrictName)

	rows := listing.FilterLowFloors(current.Rows, opts.ExcludeLowFloors)
	rows = listing.Sort(rows, opts.Ascending, opts.SortKeys...)

	return View{
		AreaName:         areaName,
		Division:         division,
		Neighborhood:     neighborhood,
		ExcludeLowFloors: opts.ExcludeLowFloors,
		Signal:           string(current.Signal),
		Rows:             rows,
		Summary:          summary.Build(rows),
	}, nil
}

// AddCurrentSelection saves the current view as a selection keyed by district, neighborhood and the low-floor flag.
func (s *State) AddCurrentSelection(opts ViewOptions) (export.Selection, error) {
	view, err := s.CurrentView(opts)
	if err != nil {
		return export.Selection{}, err
	}

	selection := export.Selection{
		Division:         view.Division,
		Neighborhood:     view.Neighborhood,
		ExcludeLowFloors: view.ExcludeLowFloors,
		Detail:           view.Rows,
		Summary:          view.Summary,
	}

	err = s.AddSelection(selection)
	if err != nil {
		return export.Selection{}, err
	}
	return selection, nil
}

func (s *State) AddSelection(selection export.Selection) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, existing := range s.selections {
		if existing.Division == selection.Division &&
			existing.Neighborhood == selection.Neighborhood &&
			existing.ExcludeLowFloors == selection.ExcludeLowFloors {
			return ErrSelectionExists
		}
	}

	if len(s.selections) >= s.maxSelections {
		return ErrSelectionLimit
	}

	s.selections = append(s.selections, selection)
	return nil
}

func (s *State) Selections() []export.Selection {
	s.mu.Lock()
	defer s.mu.Unlock()
	return slices.Clone(s.selections)
}

func (s *State) RemoveSelection(index int) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if index < 0 || index >= len(s.selections) {
		return ErrSelectionNotFound
	}

	s.selections = slices.Delete(s.selections, index, index+1)
	return nil
}

func (s *State) ClearSelections() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.selections = nil
}

func (s *State) MaxSelections() int {
	return s.maxSelections
}
