package textsub

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	docx "github.com/fumiama/go-docx"
	"github.com/gabriel-vasile/mimetype"
)

const docxMIME = "application/vnd.openxmlformats-officedocument.wordprocessingml.document"

// extractDocxText pulls the paragraph text out of a .docx document.
func extractDocxText(path string) (string, error) {
	f, err := os.Open(path)
	if err != nil {
		return "", fmt.Errorf("open docx %s: %w", path, err)
	}
	defer f.Close()

	info, err := f.Stat()
	if err != nil {
		return "", fmt.Errorf("stat docx %s: %w", path, err)
	}

	doc, err := docx.Parse(f, info.Size())
	if err != nil {
		return "", fmt.Errorf("parse docx %s: %w", path, err)
	}

	var paragraphs []string
	for _, item := range doc.Document.Body.Items {
		if para, ok := item.(*docx.Paragraph); ok {
			paragraphs = append(paragraphs, para.String())
		}
	}
	return strings.Join(paragraphs, "\n"), nil
}

// isDocx sniffs the file content and falls back to the extension when the
// sniff fails (for example on an unreadable path).
func isDocx(path string) bool {
	if mtype, err := mimetype.DetectFile(path); err == nil {
		return mtype.Is(docxMIME)
	}
	return strings.EqualFold(filepath.Ext(path), ".docx")
}

// ReadTextFile reads a submission file, extracting text from .docx documents
// and reading everything else as UTF-8 text. A docx extraction failure is
// rendered into the returned text rather than surfaced as an error, so the
// grading model sees what went wrong in place.
func ReadTextFile(path string) string {
	if isDocx(path) {
		text, err := extractDocxText(path)
		if err != nil {
			return fmt.Sprintf("ERROR: Could not extract text from docx: %v", err)
		}
		return text
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Sprintf("ERROR: Could not read file: %v", err)
	}
	return strings.ToValidUTF8(string(data), "�")
}

// RenderSubmission concatenates the deliverable and optional logbook under
// labeled section banners. A missing deliverable renders as an explicit
// error banner inside the text itself, not as a separate error value.
func RenderSubmission(deliverablePath, logbookPath string) string {
	sep := strings.Repeat("=", 60)
	var parts []string

	if _, err := os.Stat(deliverablePath); err == nil {
		parts = append(parts, sep, "DELIVERABLE FILE", sep, ReadTextFile(deliverablePath))
	} else {
		parts = append(parts, fmt.Sprintf("ERROR: Deliverable file not found: %s", deliverablePath))
	}

	if logbookPath != "" {
		if _, err := os.Stat(logbookPath); err == nil {
			parts = append(parts, "", sep, "LOGBOOK FILE", sep, ReadTextFile(logbookPath))
		} else {
			parts = append(parts, fmt.Sprintf("\nNOTE: Logbook file not found: %s", logbookPath))
		}
	}

	return strings.Join(parts, "\n")
}

// Submission groups the files belonging to one student.
type Submission struct {
	Student     string
	Deliverable string
	Logbook     string
}

var deliverableMarkers = []string{"deliverable", "text_submission", "submission_file", "_code"}

func classify(name string, sub *Submission, path string) {
	lower := strings.ToLower(name)
	for _, marker := range deliverableMarkers {
		if strings.Contains(lower, marker) {
			sub.Deliverable = path
			return
		}
	}
	if strings.Contains(lower, "logbook") {
		sub.Logbook = path
	}
}

// FindSubmissionPair locates the deliverable and logbook files for one
// student in a submissions directory. Either path may be empty.
func FindSubmissionPair(dir, studentPattern string) (deliverable, logbook string, err error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return "", "", fmt.Errorf("read submissions dir %s: %w", dir, err)
	}

	pattern := strings.ToLower(studentPattern)
	surname := strings.SplitN(pattern, "_", 2)[0]

	sub := Submission{}
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		name := strings.ToLower(entry.Name())
		if strings.Contains(name, pattern) || strings.HasPrefix(name, surname) {
			classify(entry.Name(), &sub, filepath.Join(dir, entry.Name()))
		}
	}

	return sub.Deliverable, sub.Logbook, nil
}

// ListSubmissions groups the text submissions in a directory by student,
// pairing each deliverable with its logbook when present. Grouping is by the
// LastName_FirstName filename prefix, falling back to the first underscore
// field.
func ListSubmissions(dir string) ([]Submission, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("read submissions dir %s: %w", dir, err)
	}

	byStudent := map[string]*Submission{}
	var order []string

	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		ext := strings.ToLower(filepath.Ext(entry.Name()))
		if ext != ".txt" && ext != ".docx" {
			continue
		}

		stem := strings.TrimSuffix(entry.Name(), filepath.Ext(entry.Name()))
		key := studentKey(stem)

		sub, ok := byStudent[key]
		if !ok {
			sub = &Submission{Student: key}
			byStudent[key] = sub
			order = append(order, key)
		}
		classify(entry.Name(), sub, filepath.Join(dir, entry.Name()))
	}

	subs := make([]Submission, 0, len(order))
	for _, key := range order {
		subs = append(subs, *byStudent[key])
	}
	return subs, nil
}

// studentNamePattern extracts the LastName_FirstName prefix from filenames
// like "Smith_John_RID_042_deliverable.txt".
var studentNamePattern = regexp.MustCompile(`(?i)^([A-Za-z]+_[A-Za-z]+)`)

func studentKey(stem string) string {
	if m := studentNamePattern.FindStringSubmatch(stem); m != nil {
		return strings.ToLower(m[1])
	}
	return strings.ToLower(strings.SplitN(stem, "_", 2)[0])
}
