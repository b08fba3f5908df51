// pkg/odt/odt.go - generates configuration documents for the Office Deployment Tool.

package odt

import (
	"encoding/xml"
	"fmt"
	"os"
	"path/filepath"

	"github.com/windowsadmins/officedeploy/pkg/logging"
	"github.com/windowsadmins/officedeploy/pkg/product"
)

// Language is one language element under a product.
type Language struct {
	ID string `xml:"ID,attr"`
}

// Product is one product element inside an Add or Remove directive.
type Product struct {
	ID        string     `xml:"ID,attr"`
	PIDKey    string     `xml:"PIDKEY,attr,omitempty"`
	Languages []Language `xml:"Language"`
}

// Add is the install directive.
type Add struct {
	OfficeClientEdition string    `xml:"OfficeClientEdition,attr"`
	Channel             string    `xml:"Channel,attr,omitempty"`
	Products            []Product `xml:"Product"`
}

// Remove is the uninstall directive. It deliberately carries no All
// attribute so only the listed products are removed.
type Remove struct {
	Products []Product `xml:"Product"`
}

// Display controls installer UI behavior.
type Display struct {
	Level      string `xml:"Level,attr"`
	AcceptEULA string `xml:"AcceptEULA,attr"`
}

// Logging points the deployment tool at a log directory.
type Logging struct {
	Level string `xml:"Level,attr"`
	Path  string `xml:"Path,attr"`
}

// Property is one installer property setting.
type Property struct {
	Name  string `xml:"Name,attr"`
	Value string `xml:"Value,attr"`
}

// Document is a complete deployment tool configuration.
type Document struct {
	XMLName    xml.Name   `xml:"Configuration"`
	Add        *Add       `xml:"Add,omitempty"`
	Remove     *Remove    `xml:"Remove,omitempty"`
	Display    Display    `xml:"Display"`
	Logging    Logging    `xml:"Logging"`
	Properties []Property `xml:"Property"`
}

// Options are the caller-supplied settings shared by both flows.
type Options struct {
	ClientEdition string // "32" or "64"
	Channel       string
	Languages     []string
	LogDir        string
}

func languages(opts Options) []Language {
	ids := opts.Languages
	if len(ids) == 0 {
		ids = []string{"en-us"}
	}
	langs := make([]Language, 0, len(ids))
	for _, id := range ids {
		langs = append(langs, Language{ID: id})
	}
	return langs
}

func products(ids []product.ID, opts Options) []Product {
	out := make([]Product, 0, len(ids))
	for _, id := range ids {
		out = append(out, Product{
			ID:        id.String(),
			PIDKey:    id.PIDKey(),
			Languages: languages(opts),
		})
	}
	return out
}

func common(opts Options) (Display, Logging, []Property) {
	return Display{Level: "None", AcceptEULA: "TRUE"},
		Logging{Level: "Standard", Path: opts.LogDir},
		[]Property{{Name: "FORCEAPPSHUTDOWN", Value: "TRUE"}}
}

// InstallDocument builds an Add configuration for the given edition set.
func InstallDocument(targetSet []product.ID, opts Options) Document {
	display, logCfg, props := common(opts)
	return Document{
		Add: &Add{
			OfficeClientEdition: opts.ClientEdition,
			Channel:             opts.Channel,
			Products:            products(targetSet, opts),
		},
		Display:    display,
		Logging:    logCfg,
		Properties: props,
	}
}

// UninstallDocument builds a Remove configuration listing only the requested
// products.
func UninstallDocument(requested []product.ID, opts Options) Document {
	display, logCfg, props := common(opts)
	return Document{
		Remove: &Remove{
			Products: products(requested, opts),
		},
		Display:    display,
		Logging:    logCfg,
		Properties: props,
	}
}

// Write serializes the document to path, replacing any previous run's file.
func Write(doc Document, path string) error {
	data, err := xml.MarshalIndent(doc, "", "  ")
	if err != nil {
		return fmt.Errorf("serializing configuration document: %w", err)
	}

	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("creating configuration directory: %w", err)
	}

	// Stale documents from aborted runs must never be reused.
	if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("removing previous configuration document: %w", err)
	}

	content := append([]byte(xml.Header), data...)
	content = append(content, '\n')
	if err := os.WriteFile(path, content, 0644); err != nil {
		return fmt.Errorf("writing configuration document: %w", err)
	}

	logging.Info("Wrote deployment configuration", "path", path)
	return nil
}
