package cli

import (
	"bytes"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/contactdb/internal/contact"
)

func TestOutputFormatter_JSONSuccess(t *testing.T) {
	buf := &bytes.Buffer{}
	formatter := &OutputFormatter{Format: "json", Writer: buf}

	require.NoError(t, formatter.Success(map[string]string{"result": "success"}))

	var resp CLIResponse
	require.NoError(t, json.Unmarshal(buf.Bytes(), &resp))
	assert.Equal(t, "ok", resp.Status)
	assert.NotNil(t, resp.Data)
}

func TestOutputFormatter_JSONError(t *testing.T) {
	buf := &bytes.Buffer{}
	formatter := &OutputFormatter{Format: "json", Writer: buf}

	require.NoError(t, formatter.Error("DOES_NOT_EXIST", "contact 4 does not exist", map[string]int{"handle": 4}))

	var resp CLIResponse
	require.NoError(t, json.Unmarshal(buf.Bytes(), &resp))
	assert.Equal(t, "error", resp.Status)
	require.NotNil(t, resp.Error)
	assert.Equal(t, "DOES_NOT_EXIST", resp.Error.Code)
	assert.Equal(t, "contact 4 does not exist", resp.Error.Message)
	assert.NotNil(t, resp.Error.Details)
}

func TestOutputFormatter_TextError(t *testing.T) {
	tests := []struct {
		name        string
		verbose     bool
		wantDetails bool
	}{
		{"quiet", false, false},
		{"verbose", true, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			buf := &bytes.Buffer{}
			formatter := &OutputFormatter{Format: "text", Writer: buf, Verbose: tt.verbose}

			require.NoError(t, formatter.Error("BAD_ARGUMENT", "remove: 1 item(s) rejected", "self contact"))
			assert.Contains(t, buf.String(), "Error [BAD_ARGUMENT]: remove: 1 item(s) rejected")
			if tt.wantDetails {
				assert.Contains(t, buf.String(), "Details: self contact")
			} else {
				assert.NotContains(t, buf.String(), "Details:")
			}
		})
	}
}

func TestOutputFormatter_VerboseLogUsesErrWriter(t *testing.T) {
	out, diag := &bytes.Buffer{}, &bytes.Buffer{}
	formatter := &OutputFormatter{Format: "json", Writer: out, ErrWriter: diag, Verbose: true}

	formatter.VerboseLog("opening %s", "contacts.db")
	assert.Empty(t, out.String())
	assert.Equal(t, "opening contacts.db\n", diag.String())

	formatter.Verbose = false
	formatter.VerboseLog("dropped")
	assert.NotContains(t, diag.String(), "dropped")
}

func TestWriteReport_String(t *testing.T) {
	errs := contact.ErrorMap{2: contact.DoesNotExist, 0: contact.InvalidDetail}
	r := newWriteReport("save", errs)
	r.Handles = []contact.Handle{0, 5, 0}

	assert.Equal(t, "INVALID_DETAIL", r.Code)
	assert.Equal(t, "save: INVALID_DETAIL\nhandles: 0 5 0\n  item 0: INVALID_DETAIL\n  item 2: DOES_NOT_EXIST", r.String())
}

func TestEmitWrite(t *testing.T) {
	buf := &bytes.Buffer{}
	f := &OutputFormatter{Format: "text", Writer: buf}

	require.NoError(t, emitWrite(f, newWriteReport("relate", contact.ErrorMap{})))
	assert.Equal(t, "relate: NO_ERROR\n", buf.String())

	buf.Reset()
	err := emitWrite(f, newWriteReport("relate", contact.ErrorMap{1: contact.InvalidRelationship}))
	require.Error(t, err)
	assert.Equal(t, ExitFailure, GetExitCode(err))
	assert.Contains(t, buf.String(), "Error [INVALID_RELATIONSHIP]: relate: 1 item(s) rejected")
}

func TestGetExitCode(t *testing.T) {
	assert.Equal(t, ExitCommandError, GetExitCode(WrapExitError(ExitCommandError, "open", assert.AnError)))
	assert.Equal(t, ExitFailure, GetExitCode(assert.AnError))
	assert.ErrorIs(t, WrapExitError(ExitFailure, "x", assert.AnError), assert.AnError)
}
