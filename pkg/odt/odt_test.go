package odt

import (
	"encoding/xml"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/windowsadmins/officedeploy/pkg/product"
)

func testOptions() Options {
	return Options{
		ClientEdition: "64",
		Channel:       "Current",
		Languages:     []string{"en-us"},
		LogDir:        `C:\ProgramData\OfficeDeploy\logs`,
	}
}

func TestInstallDocumentAddDirective(t *testing.T) {
	doc := InstallDocument([]product.ID{product.O365ProPlusRetail, product.VisioProXVolume}, testOptions())

	require.NotNil(t, doc.Add)
	assert.Nil(t, doc.Remove)
	assert.Equal(t, "64", doc.Add.OfficeClientEdition)
	assert.Equal(t, "Current", doc.Add.Channel)

	require.Len(t, doc.Add.Products, 2)
	assert.Equal(t, "O365ProPlusRetail", doc.Add.Products[0].ID)
	assert.Empty(t, doc.Add.Products[0].PIDKey)
	assert.Equal(t, "VisioProXVolume", doc.Add.Products[1].ID)
	assert.Equal(t, product.VisioProXVolume.PIDKey(), doc.Add.Products[1].PIDKey)

	for _, p := range doc.Add.Products {
		require.Len(t, p.Languages, 1)
		assert.Equal(t, "en-us", p.Languages[0].ID)
	}
}

func TestInstallDocumentFixedOptions(t *testing.T) {
	doc := InstallDocument([]product.ID{product.O365ProPlusRetail}, testOptions())

	assert.Equal(t, "None", doc.Display.Level)
	assert.Equal(t, "TRUE", doc.Display.AcceptEULA)
	assert.Equal(t, "Standard", doc.Logging.Level)
	require.Len(t, doc.Properties, 1)
	assert.Equal(t, "FORCEAPPSHUTDOWN", doc.Properties[0].Name)
	assert.Equal(t, "TRUE", doc.Properties[0].Value)
}

func TestUninstallDocumentRemoveDirective(t *testing.T) {
	doc := UninstallDocument([]product.ID{product.VisioProRetail}, testOptions())

	require.NotNil(t, doc.Remove)
	assert.Nil(t, doc.Add)
	require.Len(t, doc.Remove.Products, 1)
	assert.Equal(t, "VisioProRetail", doc.Remove.Products[0].ID)
}

func TestUninstallDocumentNeverRemovesAll(t *testing.T) {
	doc := UninstallDocument([]product.ID{product.O365ProPlusRetail}, testOptions())

	data, err := xml.Marshal(doc)
	require.NoError(t, err)
	assert.NotContains(t, string(data), `All=`)
}

func TestDocumentSerialization(t *testing.T) {
	doc := InstallDocument([]product.ID{product.ProjectStdXVolume}, testOptions())

	data, err := xml.MarshalIndent(doc, "", "  ")
	require.NoError(t, err)

	out := string(data)
	assert.Contains(t, out, `<Configuration>`)
	assert.Contains(t, out, `<Add OfficeClientEdition="64" Channel="Current">`)
	assert.Contains(t, out, `<Product ID="ProjectStdXVolume" PIDKEY="`+product.ProjectStdXVolume.PIDKey()+`">`)
	assert.Contains(t, out, `<Language ID="en-us">`)
	assert.Contains(t, out, `<Display Level="None" AcceptEULA="TRUE">`)
	assert.Contains(t, out, `<Property Name="FORCEAPPSHUTDOWN" Value="TRUE">`)
}

func TestLanguagesDefaultWhenUnset(t *testing.T) {
	opts := testOptions()
	opts.Languages = nil
	doc := InstallDocument([]product.ID{product.O365ProPlusRetail}, opts)

	require.Len(t, doc.Add.Products[0].Languages, 1)
	assert.Equal(t, "en-us", doc.Add.Products[0].Languages[0].ID)
}

func TestWriteReplacesPreviousDocument(t *testing.T) {
	path := filepath.Join(t.TempDir(), "configuration.xml")
	require.NoError(t, os.WriteFile(path, []byte("stale content"), 0644))

	doc := InstallDocument([]product.ID{product.O365ProPlusRetail}, testOptions())
	require.NoError(t, Write(doc, path))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	content := string(data)
	assert.NotContains(t, content, "stale content")
	assert.True(t, strings.HasPrefix(content, xml.Header))
	assert.Contains(t, content, "O365ProPlusRetail")
}

func TestWriteCreatesMissingDirectory(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "dir", "configuration.xml")

	doc := UninstallDocument([]product.ID{product.ProjectProRetail}, testOptions())
	require.NoError(t, Write(doc, path))

	_, err := os.Stat(path)
	assert.NoError(t, err)
}
