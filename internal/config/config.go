// Package config loads test collections from YAML files. A collection
// seeds the variable store and lists the items the pipeline executes in
// order; an optional perf block configures the performance engine.
package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"apitest/internal/pipeline"
)

// Collection is the on-disk shape of a test suite.
type Collection struct {
	Name  string            `yaml:"name"`
	Vars  map[string]string `yaml:"vars"`
	Items []ItemConfig      `yaml:"items"`
	Perf  *PerfConfig       `yaml:"perf"`
}

// ItemConfig mirrors pipeline.Item with YAML-friendly field names.
// Durations are strings in time.ParseDuration form ("5s", "250ms").
type ItemConfig struct {
	Name       string            `yaml:"name"`
	Method     string            `yaml:"method"`
	URL        string            `yaml:"url"`
	Headers    map[string]string `yaml:"headers"`
	Params     map[string]string `yaml:"params"`
	Body       string            `yaml:"body"`
	PreScript  string            `yaml:"preScript"`
	PostScript string            `yaml:"postScript"`
	Capture    bool              `yaml:"capture"`
	Timeout    string            `yaml:"timeout"`
}

// PerfConfig configures a performance run over one item of the collection.
type PerfConfig struct {
	Item        string  `yaml:"item"`
	Iterations  int     `yaml:"iterations"`
	Duration    string  `yaml:"duration"`
	Concurrency int     `yaml:"concurrency"`
	Rate        float64 `yaml:"rate"`

	// AbortFailureRate is a fraction in (0,1]; the run stops early once
	// the observed failure rate reaches it.
	AbortFailureRate float64 `yaml:"abortFailureRate"`
}

// ParseDuration resolves the perf block's duration. Empty means unset.
func (p *PerfConfig) ParseDuration() (time.Duration, error) {
	if p == nil || p.Duration == "" {
		return 0, nil
	}
	d, err := time.ParseDuration(p.Duration)
	if err != nil {
		return 0, fmt.Errorf("perf duration: %w", err)
	}
	return d, nil
}

// Load reads and validates a collection file.
func Load(path string) (*Collection, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading collection: %w", err)
	}
	return Parse(data)
}

// Parse decodes a collection from YAML and validates every item, so a
// broken collection is rejected before anything runs.
func Parse(data []byte) (*Collection, error) {
	var c Collection
	if err := yaml.Unmarshal(data, &c); err != nil {
		return nil, fmt.Errorf("parsing collection: %w", err)
	}
	if len(c.Items) == 0 {
		return nil, fmt.Errorf("collection has no items")
	}
	for i, ic := range c.Items {
		item, err := ic.toItem()
		if err != nil {
			return nil, fmt.Errorf("item %d: %w", i+1, err)
		}
		if err := item.Validate(); err != nil {
			return nil, fmt.Errorf("item %d: %w", i+1, err)
		}
	}
	if c.Perf != nil {
		if _, err := c.Perf.ParseDuration(); err != nil {
			return nil, err
		}
		if c.Perf.Item != "" {
			if _, err := c.Item(c.Perf.Item); err != nil {
				return nil, fmt.Errorf("perf block: %w", err)
			}
		}
	}
	return &c, nil
}

// Item finds a named item.
func (c *Collection) Item(name string) (pipeline.Item, error) {
	for _, ic := range c.Items {
		if ic.Name == name {
			return ic.toItem()
		}
	}
	return pipeline.Item{}, fmt.Errorf("no item named %q", name)
}

// PipelineItems converts every entry for sequential execution. Parse
// already validated the entries, so conversion cannot fail here.
func (c *Collection) PipelineItems() []pipeline.Item {
	items := make([]pipeline.Item, len(c.Items))
	for i, ic := range c.Items {
		items[i], _ = ic.toItem()
	}
	return items
}

func (ic ItemConfig) toItem() (pipeline.Item, error) {
	var timeout time.Duration
	if ic.Timeout != "" {
		var err error
		timeout, err = time.ParseDuration(ic.Timeout)
		if err != nil {
			return pipeline.Item{}, fmt.Errorf("timeout: %w", err)
		}
	}
	return pipeline.Item{
		Name:       ic.Name,
		Method:     ic.Method,
		URL:        ic.URL,
		Headers:    ic.Headers,
		Params:     ic.Params,
		Body:       ic.Body,
		PreScript:  ic.PreScript,
		PostScript: ic.PostScript,
		Capture:    ic.Capture,
		Timeout:    timeout,
	}, nil
}
