package grader

import (
	"errors"
	"fmt"

	"github.com/mselheim/routegrader/internal/notebook"
	"github.com/mselheim/routegrader/internal/route"
	"github.com/mselheim/routegrader/internal/textsub"
)

// ErrEmptySolution marks a solution notebook with no recognizable exercise
// headers. Raised during preparation, before any model call.
var ErrEmptySolution = errors.New("no exercises found in solution notebook")

// Context carries everything needed to grade a notebook against a route
// specification. Built once per request and never mutated afterwards.
type Context struct {
	Route        route.Route
	Notebook     notebook.NotebookView
	RouteText    string
	NotebookText string
	ExerciseIDs  []string
	RouteID      string
	StudentID    string
}

// SolutionContext carries everything needed to grade a notebook against a
// solution notebook.
type SolutionContext struct {
	Exercises     []notebook.SolutionExercise
	Notebook      notebook.NotebookView
	SolutionText  string
	NotebookText  string
	ExerciseIDs   []string
	ExerciseTypes map[string]string
	RouteID       string
	StudentID     string
}

// TextContext carries everything needed to grade a text submission against a
// route specification.
type TextContext struct {
	Route          route.Route
	SubmissionText string
	RouteText      string
	ExerciseIDs    []string
	RouteID        string
	StudentID      string
}

// PrepareContext loads and renders a route and a student notebook for
// route-based grading.
func PrepareContext(routePath, notebookPath, routeID, studentID string) (Context, error) {
	parsedRoute, err := route.ParseFile(routePath)
	if err != nil {
		return Context{}, err
	}

	view, err := notebook.ParseFile(notebookPath)
	if err != nil {
		return Context{}, err
	}

	return Context{
		Route:        parsedRoute,
		Notebook:     view,
		RouteText:    parsedRoute.FormatForPrompt(),
		NotebookText: notebook.FormatForPrompt(view),
		ExerciseIDs:  parsedRoute.ExerciseIDs(),
		RouteID:      routeID,
		StudentID:    studentID,
	}, nil
}

// PrepareSolutionContext loads a solution notebook and a student notebook for
// solution-based grading. A solution with no exercise headers is unusable.
func PrepareSolutionContext(solutionPath, notebookPath, routeID, studentID string) (SolutionContext, error) {
	solutionView, err := notebook.ParseFile(solutionPath)
	if err != nil {
		return SolutionContext{}, err
	}

	exercises := notebook.ExtractExercises(solutionView)
	if len(exercises) == 0 {
		return SolutionContext{}, fmt.Errorf(
			"%w: %s (headers like '## Exercise 1' are required)", ErrEmptySolution, solutionPath)
	}

	view, err := notebook.ParseFile(notebookPath)
	if err != nil {
		return SolutionContext{}, err
	}

	return SolutionContext{
		Exercises:     exercises,
		Notebook:      view,
		SolutionText:  notebook.FormatSolution(exercises),
		NotebookText:  notebook.FormatForPrompt(view),
		ExerciseIDs:   notebook.ExerciseIDs(exercises),
		ExerciseTypes: notebook.ExerciseTypes(exercises),
		RouteID:       routeID,
		StudentID:     studentID,
	}, nil
}

// PrepareTextContext loads a route and renders a text submission pair for
// text-based grading. An empty logbook path means no logbook was submitted.
func PrepareTextContext(routePath, deliverablePath, logbookPath, routeID, studentID string) (TextContext, error) {
	parsedRoute, err := route.ParseFile(routePath)
	if err != nil {
		return TextContext{}, err
	}

	return TextContext{
		Route:          parsedRoute,
		SubmissionText: textsub.RenderSubmission(deliverablePath, logbookPath),
		RouteText:      parsedRoute.FormatForPrompt(),
		ExerciseIDs:    parsedRoute.ExerciseIDs(),
		RouteID:        routeID,
		StudentID:      studentID,
	}, nil
}
