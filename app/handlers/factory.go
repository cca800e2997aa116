package handlers

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/Rakhulsr/go-tours/app/repositories"
	"github.com/gorilla/mux"
	"github.com/unrolled/render"
)

// The capability sets one entity service offers to the generic handlers below.
type (
	Creator[T, In any] interface {
		Create(ctx context.Context, in *In) (*T, error)
	}
	Updater[T any] interface {
		Update(ctx context.Context, id string, patch map[string]any) (*T, error)
	}
	Deleter interface {
		Delete(ctx context.Context, id string) error
	}
	Finder[T any] interface {
		FindByID(ctx context.Context, id string) (*T, error)
	}
	Lister[T any] interface {
		FindAll(ctx context.Context, q repositories.Query) ([]T, error)
	}
)

// Prepare fills parts of a create input from the request (path params, the current user).
type Prepare[In any] func(r *http.Request, in *In)

// QueryModifier rewrites the parsed list query before it reaches the service.
type QueryModifier func(r *http.Request, q repositories.Query) repositories.Query

// CreateOne decodes the body, lets the service normalize, validate and insert it and answers 201.
func CreateOne[T, In any](rnd *render.Render, svc Creator[T, In], prepare ...Prepare[In]) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		in := new(In)
		if err := decodeJSON(w, r, in); err != nil {
			respondError(rnd, w, r, err)
			return
		}
		for _, p := range prepare {
			p(r, in)
		}

		doc, err := svc.Create(r.Context(), in)
		if err != nil {
			respondError(rnd, w, r, err)
			return
		}
		writeDocument(rnd, w, http.StatusCreated, doc)
	}
}

// UpdateOne applies a partial update to the document named by the {id} path parameter.
func UpdateOne[T any](rnd *render.Render, svc Updater[T]) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		patch := map[string]any{}
		if err := decodeJSON(w, r, &patch); err != nil {
			respondError(rnd, w, r, err)
			return
		}

		doc, err := svc.Update(r.Context(), mux.Vars(r)["id"], patch)
		if err != nil {
			respondError(rnd, w, r, err)
			return
		}
		writeDocument(rnd, w, http.StatusOK, doc)
	}
}

func DeleteOne(rnd *render.Render, svc Deleter) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := svc.Delete(r.Context(), mux.Vars(r)["id"]); err != nil {
			respondError(rnd, w, r, err)
			return
		}
		w.WriteHeader(http.StatusNoContent)
	}
}

func GetOne[T any](rnd *render.Render, svc Finder[T]) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		doc, err := svc.FindByID(r.Context(), mux.Vars(r)["id"])
		if err != nil {
			respondError(rnd, w, r, err)
			return
		}
		writeDocument(rnd, w, http.StatusOK, doc)
	}
}

// GetAll lists documents with filtering, sorting, pagination and field projection from the query string.
func GetAll[T any](rnd *render.Render, svc Lister[T], modifiers ...QueryModifier) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		q := repositories.ParseQuery(r.URL.Query())
		for _, m := range modifiers {
			q = m(r, q)
		}

		docs, err := svc.FindAll(r.Context(), q)
		if err != nil {
			respondError(rnd, w, r, err)
			return
		}
		if docs == nil {
			docs = []T{}
		}
		if len(q.Fields) == 0 {
			writeDocuments(rnd, w, docs, len(docs))
			return
		}

		projected, err := project(docs, q.Fields)
		if err != nil {
			respondError(rnd, w, r, err)
			return
		}
		writeDocuments(rnd, w, projected, len(projected))
	}
}

// project keeps only the requested JSON fields of each document. The id is always kept.
func project[T any](docs []T, fields []string) ([]map[string]json.RawMessage, error) {
	keep := map[string]bool{"id": true}
	for _, f := range fields {
		keep[f] = true
	}

	out := make([]map[string]json.RawMessage, 0, len(docs))
	for i := range docs {
		raw, err := json.Marshal(&docs[i])
		if err != nil {
			return nil, fmt.Errorf("project document: %w", err)
		}
		var full map[string]json.RawMessage
		if err := json.Unmarshal(raw, &full); err != nil {
			return nil, fmt.Errorf("project document: %w", err)
		}
		for k := range full {
			if !keep[k] {
				delete(full, k)
			}
		}
		out = append(out, full)
	}
	return out, nil
}
