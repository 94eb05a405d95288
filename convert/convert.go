// Package convert runs the whole conversion: check the request, parse the
// payouts, build the structure, and save it.
package convert

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/jonboulle/clockwork"

	"github.com/ts4z/ggsc/dep"
	"github.com/ts4z/ggsc/he"
	"github.com/ts4z/ggsc/payout"
	"github.com/ts4z/ggsc/paytable"
	"github.com/ts4z/ggsc/state"
	"github.com/ts4z/ggsc/textutil"
	"github.com/ts4z/ggsc/varz"
)

// Every error from Prepare and Convert wraps one of these.
var (
	ErrMissingField          = errors.New("please fill in all required fields")
	ErrInvalidTournamentName = errors.New("tournament name contains illegal characters")
	ErrNonIntegerChips       = errors.New("total chips must be a positive integer")
	ErrUnreadableInput       = errors.New("can't read the pasted payouts")
	ErrNoPlayersParsed       = errors.New("no players found; try another mode or check the pasted structure")
	ErrZeroAmountPlayer      = errors.New("a player has a zero prize; try PKO mode or check the pasted structure")
	ErrPersistence           = errors.New("failed to save structure")
)

var (
	conversions = varz.NewCounterVec("conversions_total", "conversions by mode and result", "mode", "result")
	skipped     = varz.NewCounterVec("skipped_entries_total", "input windows or rows dropped while parsing", "mode")
	partials    = varz.NewCounterVec("partial_scans_total", "parses that stopped before the end of the input", "mode")
)

// Request is one conversion as the user typed it.  Chips stays a string so
// that non-numeric input can be reported as such.
type Request struct {
	TournamentName string      `json:"tournament_name" validate:"required"`
	Chips          string      `json:"chips" validate:"required"`
	Mode           payout.Mode `json:"mode" validate:"omitempty,oneof=standard pko csv xlsx"`
	Data           []byte      `json:"-"`
}

// Outcome is a successful conversion.  Parse.Partial() may still be true
// when the PKO scan stopped early; the structure then holds what was read.
type Outcome struct {
	Export   *paytable.Export
	Parse    *payout.Result
	Location string
	Elapsed  time.Duration
}

type Converter struct {
	storage     state.StructureStorage
	validate    *validator.Validate
	clock       clockwork.Clock
	defaultMode payout.Mode
}

func NewConverter(storage state.StructureStorage, clock clockwork.Clock, defaultMode payout.Mode) *Converter {
	if defaultMode == "" {
		defaultMode = payout.ModeStandard
	}
	return &Converter{
		storage:     dep.Required(storage),
		validate:    validator.New(),
		clock:       dep.Required(clock),
		defaultMode: defaultMode,
	}
}

// fail wraps sentinel with an HTTP code so the web app can send it as is.
func fail(code int, sentinel error, detail string) error {
	if detail == "" {
		return he.New(code, sentinel)
	}
	return he.New(code, fmt.Errorf("%w: %s", sentinel, detail))
}

func (c *Converter) checkRequest(req *Request) error {
	if err := c.validate.Struct(req); err != nil {
		var verrs validator.ValidationErrors
		if !errors.As(err, &verrs) {
			return fail(http.StatusBadRequest, ErrMissingField, err.Error())
		}
		var missing []string
		for _, fe := range verrs {
			if fe.Field() == "Mode" {
				return fail(http.StatusBadRequest, ErrUnreadableInput, fmt.Sprintf("unknown mode %q", req.Mode))
			}
			missing = append(missing, fe.Field())
		}
		return fail(http.StatusBadRequest, ErrMissingField, strings.Join(missing, ", "))
	}
	if !textutil.ValidTournamentName(req.TournamentName) {
		return fail(http.StatusBadRequest, ErrInvalidTournamentName, "")
	}
	return nil
}

func parseChips(s string) (int, error) {
	if !textutil.IsDigits(s) {
		return 0, fail(http.StatusBadRequest, ErrNonIntegerChips, fmt.Sprintf("%q", s))
	}
	n, err := strconv.Atoi(s)
	if err != nil || n <= 0 {
		return 0, fail(http.StatusBadRequest, ErrNonIntegerChips, fmt.Sprintf("%q", s))
	}
	return n, nil
}

// Prepare checks req, parses it, and builds the export without saving it.
func (c *Converter) Prepare(req *Request) (*Outcome, error) {
	if err := c.checkRequest(req); err != nil {
		return nil, err
	}
	chips, err := parseChips(req.Chips)
	if err != nil {
		return nil, err
	}

	mode := req.Mode
	if mode == "" {
		mode = c.defaultMode
	}
	result, err := payout.Parse(mode, req.Data)
	if err != nil {
		conversions.WithLabelValues(string(mode), "unreadable").Inc()
		return nil, fail(http.StatusBadRequest, ErrUnreadableInput, err.Error())
	}
	skipped.WithLabelValues(string(mode)).Add(float64(result.Skipped))
	if result.Partial() {
		partials.WithLabelValues(string(mode)).Inc()
		log.Printf("warning: %s parse of %q is partial, continuing with %d players: %v",
			mode, req.TournamentName, result.Players.Len(), result.Err)
	}

	if result.Players.Len() == 0 {
		conversions.WithLabelValues(string(mode), "no_players").Inc()
		return nil, fail(http.StatusUnprocessableEntity, ErrNoPlayersParsed, "")
	}
	if result.Players.HasZeroAmount() {
		conversions.WithLabelValues(string(mode), "zero_amount").Inc()
		return nil, fail(http.StatusUnprocessableEntity, ErrZeroAmountPlayer, "")
	}

	return &Outcome{
		Export: paytable.Build(req.TournamentName, chips, result.Players),
		Parse:  result,
	}, nil
}

// Convert prepares req and saves the export.
func (c *Converter) Convert(ctx context.Context, req *Request) (*Outcome, error) {
	start := c.clock.Now()
	out, err := c.Prepare(req)
	if err != nil {
		return nil, err
	}
	loc, err := c.storage.SaveStructure(ctx, out.Export)
	if err != nil {
		conversions.WithLabelValues(string(out.Parse.Mode), "persistence").Inc()
		return nil, he.New(http.StatusInternalServerError, fmt.Errorf("%w: %w", ErrPersistence, err))
	}
	out.Location = loc
	out.Elapsed = c.clock.Since(start)
	conversions.WithLabelValues(string(out.Parse.Mode), "saved").Inc()
	log.Printf("saved %q (%d prizes, %s mode) to %s", req.TournamentName,
		out.Export.Structures[0].Prizes.Len(), out.Parse.Mode, loc)
	return out, nil
}
