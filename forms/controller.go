package forms

import (
	"context"
	"errors"
	"sync"

	"bitbucket.org/prajapati/wealth_backend/docstore"
)

var (
	ErrNotLastStep = errors.New("submit is only allowed from the last step")
	ErrFormClosed  = errors.New("form is closed")
)

// SubmitFunc writes the form. editID is empty when creating.
type SubmitFunc func(ctx context.Context, editID string, fields Fields) error

// RepositorySubmit writes forms through a repository: a new record goes to
// create and an edit to update under its id.
func RepositorySubmit(
	create func(ctx context.Context, fields docstore.Data) (string, error),
	update func(ctx context.Context, id string, fields docstore.Data) error,
) SubmitFunc {
	return func(ctx context.Context, editID string, fields Fields) error {
		if editID == "" {
			_, err := create(ctx, docstore.Data(fields))
			return err
		}
		return update(ctx, editID, docstore.Data(fields))
	}
}

// Controller walks one form through its steps. Step is 0-based.
type Controller struct {
	mu     sync.Mutex
	def    *Definition
	submit SubmitFunc
	open   bool
	step   int
	fields Fields
	errors Errors
	editID string
}

func NewController(def *Definition, submit SubmitFunc) *Controller {
	return &Controller{def: def, submit: submit, fields: Fields{}, errors: Errors{}}
}

// Open starts the form on its first step. A non-empty editID seeds the
// fields from the record being edited.
func (c *Controller) Open(editID string, seed Fields) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.reset()
	c.open = true
	c.editID = editID
	if seed != nil {
		c.fields = seed.clone()
	}
}

func (c *Controller) Set(name string, value any) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.fields[name] = value
	delete(c.errors, name)
}

// Next validates the current step and advances when it passes.
func (c *Controller) Next() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	if !c.open {
		return false
	}
	errs := c.def.ValidateStep(c.step, c.fields)
	if len(errs) > 0 {
		c.errors = errs
		return false
	}
	c.errors = Errors{}
	if c.step < c.def.StepCount()-1 {
		c.step++
	}
	return true
}

// Back moves one step back without validating.
func (c *Controller) Back() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.step > 0 {
		c.step--
	}
}

func (c *Controller) Cancel() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.reset()
}

// Submit validates every step and writes the form. On success the form is
// reset and closed; on failure its state is kept for a retry.
func (c *Controller) Submit(ctx context.Context) error {
	c.mu.Lock()
	if !c.open {
		c.mu.Unlock()
		return ErrFormClosed
	}
	if c.step != c.def.StepCount()-1 {
		c.mu.Unlock()
		return ErrNotLastStep
	}
	if errs := c.def.ValidateAll(c.fields); len(errs) > 0 {
		c.errors = errs
		c.mu.Unlock()
		return errs
	}
	fields := c.fields.clone()
	editID := c.editID
	c.mu.Unlock()

	if err := c.submit(ctx, editID, fields); err != nil {
		return err
	}

	c.mu.Lock()
	c.reset()
	c.mu.Unlock()
	return nil
}

func (c *Controller) reset() {
	c.open = false
	c.step = 0
	c.fields = Fields{}
	c.errors = Errors{}
	c.editID = ""
}

func (c *Controller) Step() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.step
}

func (c *Controller) IsOpen() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.open
}

func (c *Controller) IsLastStep() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.step == c.def.StepCount()-1
}

func (c *Controller) Fields() Fields {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.fields.clone()
}

func (c *Controller) Errors() Errors {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make(Errors, len(c.errors))
	for k, v := range c.errors {
		out[k] = v
	}
	return out
}

func (c *Controller) EditID() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.editID
}
