package handlers

import (
	"bytes"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/therapytreasure/backend/internal/models"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

func TestMatchesQuery(t *testing.T) {
	view := therapistView{
		Name:    "Jamie",
		Surname: "Doe",
		Therapist: models.Therapist{
			Title:        "Clinical Psychologist",
			About:        "I work with anxiety and burnout.",
			Certificates: "CBT Level 2",
			University: []models.University{
				{UniName: "Utrecht University", Degree: "MSc", Department: "Psychology", GraduationYear: "2015"},
			},
		},
		Expertises: []string{"Anxiety", "Depression"},
		Categories: []string{"Adults"},
	}

	tests := []struct {
		name  string
		query string
		want  bool
	}{
		{name: "owner name", query: "jamie", want: true},
		{name: "title fragment", query: "psycholog", want: true},
		{name: "about text", query: "burnout", want: true},
		{name: "certificate", query: "cbt", want: true},
		{name: "university", query: "utrecht", want: true},
		{name: "expertise tag", query: "depression", want: true},
		{name: "category tag", query: "adults", want: true},
		{name: "no match", query: "hypnosis", want: false},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if got := matchesQuery(view, tc.query); got != tc.want {
				t.Fatalf("matchesQuery(%q) = %v, want %v", tc.query, got, tc.want)
			}
		})
	}
}

func TestParseBool(t *testing.T) {
	for _, s := range []string{"true", "True", "1", "on", "yes"} {
		if !parseBool(s) {
			t.Fatalf("parseBool(%q) = false", s)
		}
	}
	for _, s := range []string{"false", "0", "off", "", "nope"} {
		if parseBool(s) {
			t.Fatalf("parseBool(%q) = true", s)
		}
	}
}

func TestParseObjectIDList(t *testing.T) {
	a := primitive.NewObjectID()
	b := primitive.NewObjectID()

	got := parseObjectIDList(a.Hex() + ", " + b.Hex() + ",garbage,")
	if len(got) != 2 {
		t.Fatalf("got %d ids, want 2", len(got))
	}
	if got[0] != a || got[1] != b {
		t.Fatalf("unexpected ids: %v", got)
	}

	if got := parseObjectIDList(""); len(got) != 0 {
		t.Fatalf("empty input produced %v", got)
	}
}

func multipartRequest(t *testing.T, fields map[string]string, files map[string][2]string) *http.Request {
	t.Helper()

	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	for k, v := range fields {
		mw.WriteField(k, v)
	}
	for field, nameAndType := range files {
		h := make(map[string][]string)
		h["Content-Disposition"] = []string{`form-data; name="` + field + `"; filename="` + nameAndType[0] + `"`}
		h["Content-Type"] = []string{nameAndType[1]}
		part, err := mw.CreatePart(h)
		if err != nil {
			t.Fatalf("create part: %v", err)
		}
		part.Write([]byte("%PDF-1.4 test"))
	}
	mw.Close()

	req := httptest.NewRequest(http.MethodPost, "/api/therapists/apply", &buf)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	if err := req.ParseMultipartForm(1 << 20); err != nil {
		t.Fatalf("parse multipart: %v", err)
	}
	return req
}

func TestParseUniversities(t *testing.T) {
	fields := map[string]string{
		"university_count":              "3",
		"university[0].uni_name":        "Utrecht University",
		"university[0].degree":          "MSc",
		"university[0].department":      "Psychology",
		"university[0].graduation_year": "2015",
		"university[1].uni_name":        "Leiden University",
		"university[1].degree":          "BSc",
		"university[1].department":      "Psychology",
		"university[1].graduation_year": "2012",
		// entry 2 is incomplete and should be skipped
		"university[2].uni_name": "Ghost University",
	}
	req := multipartRequest(t, fields, nil)

	got := parseUniversities(req)
	if len(got) != 2 {
		t.Fatalf("got %d entries, want 2: %v", len(got), got)
	}
	if got[0].UniName != "Utrecht University" || got[1].UniName != "Leiden University" {
		t.Fatalf("unexpected entries: %v", got)
	}
}

func TestParseUniversitiesCapped(t *testing.T) {
	fields := map[string]string{"university_count": "1000"}
	req := multipartRequest(t, fields, nil)
	if got := parseUniversities(req); len(got) != 0 {
		t.Fatalf("expected no entries, got %v", got)
	}
}

func TestIsPDF(t *testing.T) {
	req := multipartRequest(t, nil, map[string][2]string{
		"cv":    {"cv.pdf", "application/pdf"},
		"photo": {"photo.png", "image/png"},
	})

	if !isPDF(formFile(req, "cv")) {
		t.Fatal("expected cv to be detected as pdf")
	}
	if isPDF(formFile(req, "photo")) {
		t.Fatal("expected png to be rejected")
	}
	if formFile(req, "missing") != nil {
		t.Fatal("expected nil for missing file field")
	}
}
