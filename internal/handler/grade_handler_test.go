package handler_test

import (
	"bytes"
	"encoding/json"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"
	"github.com/santhosh-tekuri/jsonschema/v5"
	"github.com/stretchr/testify/require"

	"github.com/mselheim/routegrader/internal/grader"
	"github.com/mselheim/routegrader/internal/handler"
	"github.com/mselheim/routegrader/internal/llm"
	"github.com/mselheim/routegrader/internal/schema"
)

const routeMarkdown = "# Lab 3\n\nIntro.\n\n## Exercise 1: Molarity\n\nCompute it.\n"

const studentNotebook = `{
  "cells": [
    {"cell_type": "code", "source": ["print(0.5)"], "outputs": [], "execution_count": 1}
  ],
  "metadata": {}
}`

const mockGraded = `{
  "schema_version": "1.0",
  "route_id": null,
  "student_id": null,
  "exercises": [
    {"exercise_id": "Exercise 1", "rating": "OK", "rationale": "Computed but unexplained."}
  ],
  "overall_summary": "Acceptable work."
}`

func newTestApp(t *testing.T, client llm.Client, resultsDir string) *fiber.App {
	t.Helper()
	app := fiber.New()
	h := handler.NewGradeHandler(client, grader.DefaultOptions(), resultsDir, zerolog.Nop())
	h.Register(app.Group("/api"))
	return app
}

func multipartBody(t *testing.T, fields map[string]string, files map[string]string) (*bytes.Buffer, string) {
	t.Helper()
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)

	for name, value := range fields {
		require.NoError(t, w.WriteField(name, value))
	}
	for name, content := range files {
		part, err := w.CreateFormFile(name, name+".dat")
		require.NoError(t, err)
		_, err = io.WriteString(part, content)
		require.NoError(t, err)
	}

	require.NoError(t, w.Close())
	return &buf, w.FormDataContentType()
}

func postMultipart(t *testing.T, app *fiber.App, path string, body *bytes.Buffer, contentType string) *http.Response {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, path, body)
	req.Header.Set("Content-Type", contentType)
	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	return resp
}

func compiledResultSchema(t *testing.T) *jsonschema.Schema {
	t.Helper()
	compiler := jsonschema.NewCompiler()
	require.NoError(t, compiler.AddResource("grading_result.schema.json", bytes.NewReader(schema.JSONSchema())))
	compiled, err := compiler.Compile("grading_result.schema.json")
	require.NoError(t, err)
	return compiled
}

func TestGradeEndpointContract(t *testing.T) {
	resultsDir := t.TempDir()
	app := newTestApp(t, llm.NewMockClient(mockGraded), resultsDir)

	body, contentType := multipartBody(t,
		map[string]string{"route_id": "RID_003", "student_id": "smith_john"},
		map[string]string{"route": routeMarkdown, "notebook": studentNotebook},
	)

	resp := postMultipart(t, app, "/api/grade", body, contentType)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	defer resp.Body.Close()

	var payload struct {
		Success bool            `json:"success"`
		Message string          `json:"message"`
		Data    json.RawMessage `json:"data"`
	}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&payload))
	require.True(t, payload.Success)
	require.Equal(t, "grading complete", payload.Message)

	// The response body must itself satisfy the published result schema.
	var doc interface{}
	require.NoError(t, json.Unmarshal(payload.Data, &doc))
	require.NoError(t, compiledResultSchema(t).Validate(doc))

	var result schema.GradingResult
	require.NoError(t, json.Unmarshal(payload.Data, &result))
	require.NotNil(t, result.StudentID)
	require.Equal(t, "smith_john", *result.StudentID, "null identifiers are backfilled from form fields")
}

func TestGradeEndpointPersistsResult(t *testing.T) {
	resultsDir := t.TempDir()
	app := newTestApp(t, llm.NewMockClient(mockGraded), resultsDir)

	body, contentType := multipartBody(t,
		map[string]string{"student_id": "doe_jane"},
		map[string]string{"route": routeMarkdown, "notebook": studentNotebook},
	)

	resp := postMultipart(t, app, "/api/grade", body, contentType)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	resp.Body.Close()

	data, err := os.ReadFile(filepath.Join(resultsDir, "doe_jane_grading.json"))
	require.NoError(t, err)

	result, err := schema.Validate(data)
	require.NoError(t, err)
	require.Equal(t, "doe_jane", *result.StudentID)
}

func TestGradeEndpointRequiresFiles(t *testing.T) {
	app := newTestApp(t, llm.NewMockClient(""), "")

	body, contentType := multipartBody(t, nil, map[string]string{"route": routeMarkdown})
	resp := postMultipart(t, app, "/api/grade", body, contentType)
	require.Equal(t, fiber.StatusBadRequest, resp.StatusCode)
	resp.Body.Close()
}

func TestGradeSolutionEndpointRejectsHeaderlessSolution(t *testing.T) {
	app := newTestApp(t, llm.NewMockClient(""), "")

	body, contentType := multipartBody(t, nil, map[string]string{
		"solution": studentNotebook, // no exercise headers
		"notebook": studentNotebook,
	})
	resp := postMultipart(t, app, "/api/grade/solution", body, contentType)
	require.Equal(t, fiber.StatusBadRequest, resp.StatusCode)
	resp.Body.Close()
}

func TestGradeEndpointMapsRepairExhaustionToBadGateway(t *testing.T) {
	app := newTestApp(t, llm.NewMockClient("never valid json"), "")

	body, contentType := multipartBody(t, nil, map[string]string{
		"route":    routeMarkdown,
		"notebook": studentNotebook,
	})
	resp := postMultipart(t, app, "/api/grade", body, contentType)
	require.Equal(t, fiber.StatusBadGateway, resp.StatusCode)
	resp.Body.Close()
}

func TestGradeTextEndpoint(t *testing.T) {
	app := newTestApp(t, llm.NewMockClient(mockGraded), "")

	body, contentType := multipartBody(t,
		map[string]string{"route_id": "RID_003"},
		map[string]string{
			"route":       routeMarkdown,
			"deliverable": "Exercise 1: the molarity is 0.5 M",
		},
	)
	resp := postMultipart(t, app, "/api/grade/text", body, contentType)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	resp.Body.Close()
}
