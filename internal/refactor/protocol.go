package refactor

import (
	"encoding/json"
	"strconv"
)

// Lookups understood by the Python helper, with their conventional id tags.
const (
	lookupAddImport       = "add_import"
	lookupExtractVariable = "extract_variable"
	lookupExtractMethod   = "extract_method"

	idAddImport       = "1"
	idExtractVariable = "2"
	idExtractMethod   = "3"
)

// readySentinel is the literal line the helper emits on stdout once it has
// finished initializing and will accept commands.
const readySentinel = "STARTED"

// moduleNotFoundType tags the "refactoring library is not installed" startup
// failure in the helper's error records.
const moduleNotFoundType = "ModuleNotFoundError"

// Command is one line-delimited JSON request written to the helper's stdin.
// Offsets are string-encoded on the wire.
type Command struct {
	Lookup     string `json:"lookup"`
	ID         string `json:"id"`
	File       string `json:"file"`
	Text       string `json:"text,omitempty"`
	Name       string `json:"name,omitempty"`
	Parent     string `json:"parent,omitempty"`
	Start      string `json:"start,omitempty"`
	End        string `json:"end,omitempty"`
	IndentSize int    `json:"indent_size"`
}

// NewAddImportCommand builds the add_import request. The document text is
// passed explicitly because the helper resolves the insertion point against
// it rather than the on-disk file.
func NewAddImportCommand(file, text, name, parent string, indentSize int) Command {
	return Command{
		Lookup:     lookupAddImport,
		ID:         idAddImport,
		File:       file,
		Text:       text,
		Name:       name,
		Parent:     parent,
		IndentSize: indentSize,
	}
}

// NewExtractVariableCommand builds the extract_variable request for the
// given byte offset range.
func NewExtractVariableCommand(file string, start, end int, name string, indentSize int) Command {
	return Command{
		Lookup:     lookupExtractVariable,
		ID:         idExtractVariable,
		File:       file,
		Start:      strconv.Itoa(start),
		End:        strconv.Itoa(end),
		Name:       name,
		IndentSize: indentSize,
	}
}

// NewExtractMethodCommand builds the extract_method request for the given
// byte offset range.
func NewExtractMethodCommand(file string, start, end int, name string, indentSize int) Command {
	return Command{
		Lookup:     lookupExtractMethod,
		ID:         idExtractMethod,
		File:       file,
		Start:      strconv.Itoa(start),
		End:        strconv.Itoa(end),
		Name:       name,
		IndentSize: indentSize,
	}
}

// successRecord is the helper's stdout response shape.
type successRecord struct {
	ID      string `json:"id"`
	Results []struct {
		Diff string `json:"diff"`
	} `json:"results"`
}

// errorRecord is the helper's stderr error shape.
type errorRecord struct {
	Message   string `json:"message"`
	Traceback string `json:"traceback"`
	Type      string `json:"type"`
}

// decodeSuccess validates a stdout record as a success response and extracts
// its diff payload. Raw untyped values never travel past this boundary.
func decodeSuccess(record json.RawMessage) (id, diff string, ok bool) {
	var parsed successRecord
	if err := json.Unmarshal(record, &parsed); err != nil {
		return "", "", false
	}
	if len(parsed.Results) == 0 {
		return "", "", false
	}
	return parsed.ID, parsed.Results[0].Diff, true
}

// decodeError validates a stderr record as an error response.
func decodeError(record json.RawMessage) (errorRecord, bool) {
	var parsed errorRecord
	if err := json.Unmarshal(record, &parsed); err != nil {
		return errorRecord{}, false
	}
	if parsed.Message == "" && parsed.Traceback == "" && parsed.Type == "" {
		return errorRecord{}, false
	}
	return parsed, true
}

// dependencyMissing reports whether the error record describes the
// refactoring library being unavailable, either via its type tag or the
// traceback's final exception line.
func (e errorRecord) dependencyMissing() bool {
	if e.Type == moduleNotFoundType {
		return true
	}
	return containsModuleNotFound(e.Traceback)
}
