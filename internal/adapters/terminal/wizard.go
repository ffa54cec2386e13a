// Package terminal runs the registration wizard as interactive terminal
// prompts against any wizard.Submitter.
package terminal

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"techfest/internal/domain/registration"
	"techfest/internal/domain/wizard"
)

// Wizard walks one registration through its steps.
type Wizard struct {
	controller *wizard.Controller
	driver     PromptDriver
	identity   wizard.Identity
	timeout    time.Duration
}

// New creates a terminal wizard filing registrations through submitter
// under identity.
// PRE: submitter non-nil; timeout > 0
func New(submitter wizard.Submitter, driver PromptDriver, identity wizard.Identity, timeout time.Duration) *Wizard {
	return &Wizard{
		controller: wizard.NewController(submitter),
		driver:     driver,
		identity:   identity,
		timeout:    timeout,
	}
}

// Run prompts for every field, gating each step on its validation, and
// submits on the last step. A failed submission can be retried while the
// answers are kept.
// POST: returns the stored registration, or an error when the user aborts
// or declines to retry
func (w *Wizard) Run(ctx context.Context) (registration.Stored, error) {
	c := w.controller
	step := c.State().CurrentStep
	fields := step.Spec().Fields
	w.heading(ctx, step)

	for {
		rec := c.Values()
		for _, spec := range fields {
			if err := w.ask(ctx, spec, &rec); err != nil {
				return registration.Stored{}, err
			}
		}
		if err := c.Update(rec); err != nil {
			return registration.Stored{}, err
		}

		if step == registration.LastStep {
			stored, err := w.submit(ctx)
			var ve *wizard.ValidationError
			switch {
			case errors.As(err, &ve):
				fields = w.reportInvalid(ctx, ve)
				continue
			case errors.Is(err, errRetry):
				fields = nil
				continue
			case err != nil:
				return registration.Stored{}, err
			}
			w.success(ctx, stored)
			return stored, nil
		}

		if err := c.Advance(); err != nil {
			var ve *wizard.ValidationError
			if !errors.As(err, &ve) {
				return registration.Stored{}, err
			}
			fields = w.reportInvalid(ctx, ve)
			continue
		}
		step = c.State().CurrentStep
		fields = step.Spec().Fields
		w.heading(ctx, step)
	}
}

var errRetry = errors.New("retry submission")

func (w *Wizard) submit(ctx context.Context) (registration.Stored, error) {
	sctx, cancel := context.WithTimeout(ctx, w.timeout)
	defer cancel()
	stored, err := w.controller.Submit(sctx, &w.identity)
	var se *wizard.SubmissionError
	if !errors.As(err, &se) {
		return stored, err
	}

	_ = w.driver.Info(ctx, "Error: "+se.Error())
	if se.Kind == wizard.AuthenticationRequired {
		return registration.Stored{}, se
	}
	retry, cerr := w.driver.Confirm(ctx, "Try submitting again?", true)
	if cerr != nil {
		return registration.Stored{}, cerr
	}
	if !retry {
		return registration.Stored{}, se
	}
	return registration.Stored{}, errRetry
}

// ask prompts for one field until the answer parses.
func (w *Wizard) ask(ctx context.Context, spec registration.FieldSpec, rec *registration.Record) error {
	for {
		answer, err := w.prompt(ctx, spec, *rec)
		if err != nil {
			return err
		}
		if err := rec.Apply(spec, answer); err != nil {
			_ = w.driver.Info(ctx, err.Error())
			continue
		}
		return nil
	}
}

// prompt asks the driver for spec and returns an answer Record.Apply accepts.
func (w *Wizard) prompt(ctx context.Context, spec registration.FieldSpec, rec registration.Record) (string, error) {
	message := spec.Label
	if spec.Required {
		message += " *"
	}
	labels := make([]string, len(spec.Options))
	for i, o := range spec.Options {
		labels[i] = o.Label
	}

	switch spec.Kind {
	case registration.KindRadio, registration.KindSelect:
		idx, err := w.driver.Select(ctx, message, labels, optionIndex(spec.Options, rec.Text(spec.Name)))
		if err != nil {
			return "", err
		}
		return strconv.Itoa(idx + 1), nil

	case registration.KindCheckbox:
		var current []string
		switch spec.Name {
		case registration.FieldEventsInterested:
			current = rec.EventsInterested
		case registration.FieldDietaryRestrictions:
			current = rec.DietaryRestrictions
		}
		defs := make([]int, 0, len(current))
		for _, v := range current {
			if i := optionIndex(spec.Options, v); i >= 0 {
				defs = append(defs, i)
			}
		}
		picked, err := w.driver.MultiSelect(ctx, message, labels, defs)
		if err != nil {
			return "", err
		}
		nums := make([]string, len(picked))
		for i, idx := range picked {
			nums[i] = strconv.Itoa(idx + 1)
		}
		return strings.Join(nums, ","), nil

	case registration.KindTextArea:
		return w.driver.TextArea(ctx, message, rec.Text(spec.Name))

	case registration.KindAgree:
		ok, err := w.driver.Confirm(ctx, message, rec.AgreeToTerms)
		if err != nil {
			return "", err
		}
		if ok {
			return "yes", nil
		}
		return "no", nil
	}
	return w.driver.Input(ctx, message, rec.Text(spec.Name))
}

// reportInvalid prints the field errors and returns the specs to re-ask.
func (w *Wizard) reportInvalid(ctx context.Context, ve *wizard.ValidationError) []registration.FieldSpec {
	var specs []registration.FieldSpec
	for _, fe := range ve.Fields {
		_ = w.driver.Info(ctx, "  - "+fe.Message)
		if spec, _, ok := registration.FieldSpecFor(fe.Field); ok {
			specs = append(specs, spec)
		}
	}
	return specs
}

func (w *Wizard) heading(ctx context.Context, step registration.Step) {
	_ = w.driver.Info(ctx, fmt.Sprintf("\nStep %d of %d: %s", int(step)+1, registration.StepCount, step.Spec().Heading))
}

func (w *Wizard) success(ctx context.Context, stored registration.Stored) {
	var sb strings.Builder
	sb.WriteString("\nRegistration Successful!\n")
	for _, line := range stored.Summary() {
		fmt.Fprintf(&sb, "  %s: %s\n", line.Label, line.Value)
	}
	fmt.Fprintf(&sb, "Reference: %s", stored.ID)
	_ = w.driver.Info(ctx, sb.String())
}

func optionIndex(options []registration.Option, value string) int {
	for i, o := range options {
		if o.Value == value {
			return i
		}
	}
	return -1
}
