// Package confirmtest provides a scripted Prompter for tests.
package confirmtest

import (
	"context"
	"sync"
)

// Prompter answers confirmations and prompts from a script and records
// every dialog it was shown.
type Prompter struct {
	mu sync.Mutex

	// Answers are consumed in order by Confirm. When exhausted Confirm
	// answers Default.
	Answers []bool
	Default bool
	// Replies are consumed in order by Prompt. An empty script dismisses
	// the prompt.
	Replies []string

	Confirms []string
	Prompts  []string
	Alerts   []string
}

func (p *Prompter) Confirm(_ context.Context, message string) (bool, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.Confirms = append(p.Confirms, message)
	if len(p.Answers) == 0 {
		return p.Default, nil
	}
	ok := p.Answers[0]
	p.Answers = p.Answers[1:]
	return ok, nil
}

func (p *Prompter) Prompt(_ context.Context, message string) (string, bool, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.Prompts = append(p.Prompts, message)
	if len(p.Replies) == 0 {
		return "", false, nil
	}
	text := p.Replies[0]
	p.Replies = p.Replies[1:]
	return text, true, nil
}

func (p *Prompter) Alert(_ context.Context, message string) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.Alerts = append(p.Alerts, message)
}

// AlertList returns a copy of the alerts shown so far.
func (p *Prompter) AlertList() []string {
	p.mu.Lock()
	defer p.mu.Unlock()
	return append([]string(nil), p.Alerts...)
}
