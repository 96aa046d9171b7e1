// Package token counts model tokens for budget enforcement. An exact
// tiktoken counter is available when the encoding can be loaded; the
// character-based estimate is the built-in fallback.
package token

import (
	"fmt"

	"github.com/pkoukk/tiktoken-go"
)

// Counter is the pluggable token counting collaborator.
type Counter interface {
	// Count returns the number of model tokens in text.
	Count(text string) int
}

// TiktokenCounter counts tokens exactly with the cl100k_base encoding.
type TiktokenCounter struct {
	encoding *tiktoken.Tiktoken
}

// NewTiktokenCounter loads the cl100k_base encoding.
func NewTiktokenCounter() (*TiktokenCounter, error) {
	encoding, err := tiktoken.GetEncoding("cl100k_base")
	if err != nil {
		return nil, fmt.Errorf("load tiktoken encoding: %w", err)
	}
	return &TiktokenCounter{encoding: encoding}, nil
}

// Count returns the exact token count of text.
func (c *TiktokenCounter) Count(text string) int {
	return len(c.encoding.Encode(text, nil, nil))
}

// EstimateCounter approximates tokens as ceil(len(text)/4), the built-in
// fallback when no exact tokenizer is supplied.
type EstimateCounter struct{}

// Count returns the ceil(chars/4) approximation.
func (EstimateCounter) Count(text string) int {
	return (len(text) + 3) / 4
}

// Default returns the exact counter when the encoding loads, otherwise the
// estimate.
func Default() Counter {
	counter, err := NewTiktokenCounter()
	if err != nil {
		return EstimateCounter{}
	}
	return counter
}

var (
	_ Counter = (*TiktokenCounter)(nil)
	_ Counter = EstimateCounter{}
)
