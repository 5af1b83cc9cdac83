package http

import (
	"net/http"

	"github.com/go-chi/chi/v5"
)

// muxAdapter presents a chi router through the Router seam. chi.Mux and the
// subrouters it hands out inside Group/Route both satisfy chi.Router, so a
// single adapter covers the root and every nested scope
type muxAdapter struct{ r chi.Router }

// AdaptChi wraps m so callers mount against Router instead of chi directly
func AdaptChi(m *chi.Mux) Router { return muxAdapter{r: m} }

func (a muxAdapter) Get(p string, h Handler)     { a.r.Get(p, h) }
func (a muxAdapter) Post(p string, h Handler)    { a.r.Post(p, h) }
func (a muxAdapter) Put(p string, h Handler)     { a.r.Put(p, h) }
func (a muxAdapter) Patch(p string, h Handler)   { a.r.Patch(p, h) }
func (a muxAdapter) Delete(p string, h Handler)  { a.r.Delete(p, h) }
func (a muxAdapter) Options(p string, h Handler) { a.r.Options(p, h) }

func (a muxAdapter) Handle(p string, h http.Handler) { a.r.Handle(p, h) }

func (a muxAdapter) Use(mw ...func(http.Handler) http.Handler) { a.r.Use(mw...) }

// Group opens an inline scope whose middleware does not leak to siblings
func (a muxAdapter) Group(fn func(Router)) {
	a.r.Group(func(sub chi.Router) { fn(muxAdapter{r: sub}) })
}

// Route mounts a subrouter under pattern
func (a muxAdapter) Route(pattern string, fn func(Router)) {
	a.r.Route(pattern, func(sub chi.Router) { fn(muxAdapter{r: sub}) })
}

// Mux exposes the underlying router for http.Server handoff
func (a muxAdapter) Mux() http.Handler { return a.r }
