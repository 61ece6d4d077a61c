package api

import (
	"net/http"
	"testing"
)

func TestClassifyStatus(t *testing.T) {
	cases := []struct {
		status int
		kind   ServiceErrorKind
	}{
		{http.StatusUnauthorized, ServiceUnauthorized},
		{http.StatusForbidden, ServiceUnauthorized},
		{http.StatusTooManyRequests, ServiceRateLimited},
		{http.StatusNotFound, ServiceUnexpected},
		{http.StatusInternalServerError, ServiceUnexpected},
		{http.StatusBadGateway, ServiceUnexpected},
	}

	for _, c := range cases {
		err := ClassifyStatus(c.status, nil)
		if err.Kind != c.kind {
			t.Errorf("ClassifyStatus(%d) kind = %s, want %s", c.status, err.Kind, c.kind)
		}
		if err.StatusCode != c.status {
			t.Errorf("ClassifyStatus(%d) status = %d", c.status, err.StatusCode)
		}
	}
}

func TestServiceMessage(t *testing.T) {
	cases := []struct {
		name string
		body string
		want string
	}{
		{"error field", `{"error":"quota exhausted"}`, "quota exhausted"},
		{"message field", `{"message":"try again later"}`, "try again later"},
		{"error preferred over message", `{"error":"a","message":"b"}`, "a"},
		{"plain text", "internal server error\n", "internal server error"},
		{"empty body", "", ""},
	}

	for _, c := range cases {
		if got := serviceMessage([]byte(c.body)); got != c.want {
			t.Errorf("%s: serviceMessage = %q, want %q", c.name, got, c.want)
		}
	}
}

func TestServiceErrorString(t *testing.T) {
	err := &ServiceError{Kind: ServiceUnauthorized, StatusCode: 401, Message: "bad key"}
	want := "service unauthorized (status 401): bad key"
	if err.Error() != want {
		t.Errorf("Error() = %q, want %q", err.Error(), want)
	}

	err = &ServiceError{Kind: ServiceTimeout, Message: "budget exhausted"}
	want = "service timeout: budget exhausted"
	if err.Error() != want {
		t.Errorf("Error() = %q, want %q", err.Error(), want)
	}
}
