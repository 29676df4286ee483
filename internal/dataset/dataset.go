// Package dataset loads clinic seed files and turns them into store records.
package dataset

import (
	_ "embed"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/UnknownOlympus/asclepius/internal/models"
	"github.com/go-playground/validator/v10"
	"github.com/goccy/go-json"
	"github.com/google/uuid"
	"gopkg.in/yaml.v3"
)

// DefaultImageURL is used for records when no image URL is configured.
const DefaultImageURL = "https://via.placeholder.com/150"

//go:embed data/johor_hospitals.yaml
var johorHospitals []byte

// Common dataset errors.
var (
	ErrEmptyDataset      = errors.New("dataset contains no clinics")
	ErrUnsupportedFormat = errors.New("unsupported dataset format")
	ErrPartialLocation   = errors.New("latitude and longitude must be set together")
	ErrMissingLocation   = errors.New("clinic has no coordinates")
)

var validate = validator.New()

// Load reads clinic seeds from a YAML (.yaml, .yml) or JSON (.json) file and validates them.
func Load(path string) ([]models.ClinicSeed, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read dataset file: %w", err)
	}

	var seeds []models.ClinicSeed
	switch ext := strings.ToLower(filepath.Ext(path)); ext {
	case ".yaml", ".yml":
		err = yaml.Unmarshal(data, &seeds)
	case ".json":
		err = json.Unmarshal(data, &seeds)
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedFormat, ext)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to decode dataset %s: %w", path, err)
	}

	if err = Validate(seeds); err != nil {
		return nil, err
	}

	return seeds, nil
}

// Default returns the built-in list of Johor hospitals.
func Default() []models.ClinicSeed {
	var seeds []models.ClinicSeed
	if err := yaml.Unmarshal(johorHospitals, &seeds); err != nil {
		panic("embedded dataset is malformed: " + err.Error())
	}

	return seeds
}

// Validate checks every seed and returns all problems found, joined.
func Validate(seeds []models.ClinicSeed) error {
	if len(seeds) == 0 {
		return ErrEmptyDataset
	}

	var errs []error
	for idx, seed := range seeds {
		if err := validate.Struct(seed); err != nil {
			errs = append(errs, fmt.Errorf("clinic #%d (%q): %w", idx, seed.Name, err))
			continue
		}
		if (seed.Latitude == nil) != (seed.Longitude == nil) {
			errs = append(errs, fmt.Errorf("clinic #%d (%q): %w", idx, seed.Name, ErrPartialLocation))
		}
	}

	return errors.Join(errs...)
}

// RecordOptions controls how seeds become records.
type RecordOptions struct {
	ImageURL string           // Placeholder image; DefaultImageURL when empty.
	Now      func() time.Time // Clock for created_at; time.Now when nil.
	NewID    func() uuid.UUID // ID generator; uuid.New when nil.
}

// ToRecords converts located seeds into clinic records sharing one created_at timestamp.
// Seeds must already carry coordinates.
func ToRecords(seeds []models.ClinicSeed, opts RecordOptions) ([]models.Clinic, error) {
	if opts.ImageURL == "" {
		opts.ImageURL = DefaultImageURL
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	if opts.NewID == nil {
		opts.NewID = uuid.New
	}

	createdAt := opts.Now().UTC()
	records := make([]models.Clinic, 0, len(seeds))
	for _, seed := range seeds {
		if !seed.HasLocation() {
			return nil, fmt.Errorf("%w: %q", ErrMissingLocation, seed.Name)
		}
		point := seed.Point()
		records = append(records, models.Clinic{
			ID:        opts.NewID(),
			Name:      seed.Name,
			Address:   seed.Address,
			Latitude:  point.Latitude,
			Longitude: point.Longitude,
			Type:      seed.Type,
			ImageURL:  opts.ImageURL,
			CreatedAt: createdAt,
		})
	}

	return records, nil
}
