package echo_test

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"
	app "github.com/mohammadpnp/csv-user-import/internal/application/user"
	httpecho "github.com/mohammadpnp/csv-user-import/internal/interfaces/http/echo"
)

type fakeImportUseCase struct {
	output app.StartImportUsersFromCSVOutput
	err    error
	got    app.StartImportUsersFromCSVInput
}

func (f *fakeImportUseCase) Execute(ctx context.Context, in app.StartImportUsersFromCSVInput) (app.StartImportUsersFromCSVOutput, error) {
	f.got = in
	if f.err != nil {
		return app.StartImportUsersFromCSVOutput{}, f.err
	}
	return f.output, nil
}

func postImport(e *echo.Echo, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, "/api/v1/imports/users", bytes.NewReader([]byte(body)))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	return rec
}

func TestImportHandlerSuccess(t *testing.T) {
	t.Parallel()

	e := echo.New()
	useCase := &fakeImportUseCase{output: app.StartImportUsersFromCSVOutput{
		JobID:  "job-1",
		Status: "queued",
	}}
	httpecho.RegisterRoutes(e, httpecho.NewImportHandler(useCase), nil, nil)

	rec := postImport(e, `{"source_path":"users.csv","roles":["reader","admin"],"notify":true}`)

	if rec.Code != http.StatusAccepted {
		t.Fatalf("expected 202, got %d", rec.Code)
	}

	var got map[string]any
	if err := json.Unmarshal(rec.Body.Bytes(), &got); err != nil {
		t.Fatalf("unexpected json: %v", err)
	}

	data, ok := got["data"].(map[string]any)
	if !ok {
		t.Fatalf("unexpected data payload: %#v", got["data"])
	}
	if data["job_id"] != "job-1" {
		t.Fatalf("unexpected job_id: %#v", data["job_id"])
	}
	if len(useCase.got.Roles) != 2 || !useCase.got.Notify || useCase.got.SourcePath != "users.csv" {
		t.Fatalf("unexpected use case input: %+v", useCase.got)
	}
}

func TestImportHandlerErrors(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		body     string
		err      error
		wantCode int
		wantErr  string
	}{
		{name: "bad json", body: `{"source_path":`, wantCode: http.StatusBadRequest, wantErr: "bad_request"},
		{name: "invalid source", body: `{"source_path":"users.json","roles":["a"]}`, err: app.ErrInvalidImportSource, wantCode: http.StatusBadRequest, wantErr: "invalid_source"},
		{name: "invalid roles", body: `{"source_path":"users.csv"}`, err: app.ErrInvalidRoles, wantCode: http.StatusBadRequest, wantErr: "invalid_roles"},
		{name: "internal", body: `{"source_path":"users.csv","roles":["a"]}`, err: errors.New("boom"), wantCode: http.StatusInternalServerError, wantErr: "internal_error"},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			e := echo.New()
			httpecho.RegisterRoutes(e, httpecho.NewImportHandler(&fakeImportUseCase{err: tt.err}), nil, nil)

			rec := postImport(e, tt.body)
			if rec.Code != tt.wantCode {
				t.Fatalf("expected %d, got %d", tt.wantCode, rec.Code)
			}
			if code := errorCode(t, rec); code != tt.wantErr {
				t.Fatalf("expected error code %q, got %q", tt.wantErr, code)
			}
		})
	}
}

func errorCode(t *testing.T, rec *httptest.ResponseRecorder) string {
	t.Helper()

	var got struct {
		Error struct {
			Code string `json:"code"`
		} `json:"error"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &got); err != nil {
		t.Fatalf("unexpected json: %v", err)
	}
	return got.Error.Code
}
