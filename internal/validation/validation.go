/*
 * MIT License
 *
 * Copyright (c) 2025 Arsene Tochemey Gandote
 *
 * Permission is hereby granted, free of charge, to any person obtaining a copy
 * of this software and associated documentation files (the "Software"), to deal
 * in the Software without restriction, including without limitation the rights
 * to use, copy, modify, merge, publish, distribute, sublicense, and/or sell
 * copies of the Software, and to permit persons to whom the Software is
 * furnished to do so, subject to the following conditions:
 *
 * The above copyright notice and this permission notice shall be included in all
 * copies or substantial portions of the Software.
 *
 * THE SOFTWARE IS PROVIDED "AS IS", WITHOUT WARRANTY OF ANY KIND, EXPRESS OR
 * IMPLIED, INCLUDING BUT NOT LIMITED TO THE WARRANTIES OF MERCHANTABILITY,
 * FITNESS FOR A PARTICULAR PURPOSE AND NONINFRINGEMENT. IN NO EVENT SHALL THE
 * AUTHORS OR COPYRIGHT HOLDERS BE LIABLE FOR ANY CLAIM, DAMAGES OR OTHER
 * LIABILITY, WHETHER IN AN ACTION OF CONTRACT, TORT OR OTHERWISE, ARISING FROM,
 * OUT OF OR IN CONNECTION WITH THE SOFTWARE OR THE USE OR OTHER DEALINGS IN THE
 * SOFTWARE.
 */

// Package validation provides composable configuration validators.
package validation

import (
	"errors"
	"fmt"
	"strings"
)

// Validator reports whether a single assertion about a configuration holds.
type Validator interface {
	// Validate returns an error when the assertion is violated.
	Validate() error
}

// Chain runs a sequence of validators and aggregates their violations.
type Chain struct {
	failFast   bool
	validators []Validator
	violations error
}

// ChainOption configures a Chain.
type ChainOption func(*Chain)

// FailFast stops the chain at the first violation.
func FailFast() ChainOption {
	return func(c *Chain) {
		c.failFast = true
	}
}

// AllErrors runs every validator and aggregates all violations.
func AllErrors() ChainOption {
	return func(c *Chain) {
		c.failFast = false
	}
}

// New creates a validation chain.
func New(opts ...ChainOption) *Chain {
	chain := &Chain{}
	for _, opt := range opts {
		opt(chain)
	}
	return chain
}

// AddValidator appends a validator to the chain.
func (c *Chain) AddValidator(v Validator) *Chain {
	c.validators = append(c.validators, v)
	return c
}

// AddAssertion appends a boolean assertion with the given violation message.
func (c *Chain) AddAssertion(assertion bool, message string) *Chain {
	c.validators = append(c.validators, NewBooleanValidator(assertion, message))
	return c
}

// Validate runs the chain and returns the aggregated violations, if any.
func (c *Chain) Validate() error {
	for _, validator := range c.validators {
		if err := validator.Validate(); err != nil {
			if c.failFast {
				return err
			}
			c.violations = errors.Join(c.violations, err)
		}
	}

	if c.violations == nil {
		return nil
	}

	var messages []string
	for _, err := range c.violations.(interface{ Unwrap() []error }).Unwrap() {
		messages = append(messages, err.Error())
	}
	return errors.New(strings.Join(messages, "; "))
}

type booleanValidator struct {
	assertion bool
	message   string
}

// NewBooleanValidator creates a validator that fails with message when
// assertion is false.
func NewBooleanValidator(assertion bool, message string) Validator {
	return &booleanValidator{
		assertion: assertion,
		message:   message,
	}
}

func (v *booleanValidator) Validate() error {
	if !v.assertion {
		return errors.New(v.message)
	}
	return nil
}

type emptyStringValidator struct {
	fieldValue string
	fieldName  string
}

// NewEmptyStringValidator creates a validator that fails when fieldValue is
// empty.
func NewEmptyStringValidator(fieldValue string, fieldName string) Validator {
	return &emptyStringValidator{
		fieldValue: fieldValue,
		fieldName:  fieldName,
	}
}

func (v *emptyStringValidator) Validate() error {
	if strings.TrimSpace(v.fieldValue) == "" {
		return fmt.Errorf("the [%s] is required", v.fieldName)
	}
	return nil
}

type conditionalValidator struct {
	condition bool
	validator Validator
}

// NewConditionalValidator creates a validator that only runs when condition
// holds.
func NewConditionalValidator(condition bool, validator Validator) Validator {
	return &conditionalValidator{
		condition: condition,
		validator: validator,
	}
}

func (v *conditionalValidator) Validate() error {
	if v.condition {
		return v.validator.Validate()
	}
	return nil
}
