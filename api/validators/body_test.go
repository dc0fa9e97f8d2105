package validators

import (
	"net/http/httptest"
	"strings"
	"testing"

	pkgerrors "github.com/solystore/pointshop-backend/pkg/errors"
)

type samplePayload struct {
	Name  string `json:"name" validate:"required,min=3"`
	Price int    `json:"price" validate:"required,gt=0"`
}

func decode(t *testing.T, body string) (*samplePayload, error) {
	t.Helper()
	req := httptest.NewRequest("POST", "/", strings.NewReader(body))
	var payload samplePayload
	err := DecodeJSONBody(req, &payload)
	return &payload, err
}

func TestDecodeValidBody(t *testing.T) {
	payload, err := decode(t, `{"name":"game key","price":50}`)
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if payload.Name != "game key" || payload.Price != 50 {
		t.Fatalf("payload = %+v", payload)
	}
}

func TestDecodeRejectsMalformedJSON(t *testing.T) {
	_, err := decode(t, `{broken`)
	if pkgerrors.CodeOf(err) != pkgerrors.CodeValidation {
		t.Fatalf("code = %s, want %s", pkgerrors.CodeOf(err), pkgerrors.CodeValidation)
	}
}

func TestDecodeRejectsUnknownFields(t *testing.T) {
	_, err := decode(t, `{"name":"x","price":1,"bogus":true}`)
	if pkgerrors.CodeOf(err) != pkgerrors.CodeValidation {
		t.Fatalf("code = %s, want %s", pkgerrors.CodeOf(err), pkgerrors.CodeValidation)
	}
}

func TestDecodeReportsFieldsByJSONName(t *testing.T) {
	_, err := decode(t, `{"name":"ab","price":0}`)
	typed := pkgerrors.As(err)
	if typed == nil {
		t.Fatal("expected typed error")
	}
	details, ok := typed.Details().(map[string]string)
	if !ok {
		t.Fatalf("details = %T", typed.Details())
	}
	if details["name"] != "must be at least 3" {
		t.Fatalf("name detail = %q", details["name"])
	}
	if details["price"] == "" {
		t.Fatal("price detail missing")
	}
}
