package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/AdamBeresnev/esports-bracket/internal/bracket"
	"github.com/AdamBeresnev/esports-bracket/internal/httputil"
	"github.com/AdamBeresnev/esports-bracket/internal/middleware"
	"github.com/AdamBeresnev/esports-bracket/views"
	"github.com/a-h/templ"
	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/google/uuid"
	"github.com/markbates/goth/gothic"
)

func (a *app) routes() http.Handler {
	r := chi.NewRouter()

	r.Use(chimiddleware.RequestID)
	r.Use(chimiddleware.Logger)
	r.Use(chimiddleware.Recoverer)
	if a.corsOrigin != "" {
		r.Use(cors.Handler(cors.Options{
			AllowedOrigins:   []string{a.corsOrigin},
			AllowedMethods:   []string{"GET", "POST", "OPTIONS"},
			AllowedHeaders:   []string{"Accept", "Content-Type", "HX-Request", "HX-Target", "HX-Current-URL"},
			ExposedHeaders:   []string{"HX-Redirect"},
			AllowCredentials: true,
			MaxAge:           300,
		}))
	}
	r.Use(a.sessionManager.LoadAndSave)
	r.Use(middleware.LoadAuthenticatedUser(a.sessionManager, a.userStore))

	fileServer := http.FileServer(http.Dir("./static"))
	r.Handle("/static/*", http.StripPrefix("/static/", fileServer))

	r.Group(func(r chi.Router) {
		r.Use(middleware.RequireAuth)

		r.Get("/", a.handleIndex)
		r.Get("/tournaments/{id}", a.handleTournament)
		r.Post("/matches/{id}/report", a.handleReport)

		r.Post("/tournaments/{id}/bracket/generate", a.handleGenerate)
		r.Post("/tournaments/{id}/bracket/lock", a.handleLock(true))
		r.Post("/tournaments/{id}/bracket/unlock", a.handleLock(false))
		r.Post("/matches/{id}/verify", a.handleVerify)
		r.Post("/matches/{id}/winner", a.handleSetWinner)
		r.Post("/matches/{id}/dispute", a.handleDispute)
	})

	r.Get("/login", func(w http.ResponseWriter, r *http.Request) {
		a.render(w, r, views.LoginPage())
	})

	r.Get("/auth/{provider}", func(w http.ResponseWriter, r *http.Request) {
		provider := chi.URLParam(r, "provider")
		r = r.WithContext(context.WithValue(r.Context(), gothic.ProviderParamKey, provider))

		gothic.BeginAuthHandler(w, r)
	})

	r.Get("/auth/{provider}/callback", func(w http.ResponseWriter, r *http.Request) {
		provider := chi.URLParam(r, "provider")
		r = r.WithContext(context.WithValue(r.Context(), gothic.ProviderParamKey, provider))

		gothUser, err := gothic.CompleteUserAuth(w, r)
		if err != nil {
			httputil.BadRequest(w, "Authentication failure", err)
			return
		}

		user, err := a.userService.FindOrCreateUserByProvider(r.Context(), gothUser)
		if err != nil {
			httputil.InternalServerError(w, "Failed to find or create user", err)
			return
		}

		if err := middleware.LogIn(r.Context(), a.sessionManager, user.ID); err != nil {
			httputil.InternalServerError(w, "Failed to start session", err)
			return
		}
		http.Redirect(w, r, "/", http.StatusFound)
	})

	r.Post("/auth/guest", func(w http.ResponseWriter, r *http.Request) {
		user, err := a.userService.EnsureGuestUser(r.Context())
		if err != nil {
			httputil.InternalServerError(w, "Failed to login as guest", err)
			return
		}

		if err := middleware.LogIn(r.Context(), a.sessionManager, user.ID); err != nil {
			httputil.InternalServerError(w, "Failed to start session", err)
			return
		}
		http.Redirect(w, r, "/", http.StatusFound)
	})

	r.Post("/logout", func(w http.ResponseWriter, r *http.Request) {
		if err := a.sessionManager.Destroy(r.Context()); err != nil {
			httputil.InternalServerError(w, "Failed to log out", err)
			return
		}
		if r.Header.Get("HX-Request") != "" {
			w.Header().Set("HX-Redirect", "/login")
			w.WriteHeader(http.StatusOK)
			return
		}
		http.Redirect(w, r, "/login", http.StatusFound)
	})

	return r
}

func (a *app) handleIndex(w http.ResponseWriter, r *http.Request) {
	tournaments, err := a.tournamentService.GetTournamentsForUser(r.Context())
	if err != nil {
		httputil.InternalServerError(w, "Failed to get tournaments", err)
		return
	}
	a.render(w, r, views.Index(tournaments))
}

func (a *app) handleTournament(w http.ResponseWriter, r *http.Request) {
	id, ok := urlID(w, r, "Invalid tournament ID")
	if !ok {
		return
	}

	data, err := a.tournamentService.GetTournamentData(r.Context(), id)
	if err != nil {
		httputil.Error(w, "Tournament not found", err)
		return
	}

	userID, _ := middleware.GetUserIDFromContext(r.Context())
	a.render(w, r, views.TournamentView(views.TournamentPage{
		Tournament:   data.Tournament,
		Bracket:      data.Bracket,
		Participants: data.Participants,
		Matches:      data.Matches,
		NextMatchID:  data.NextMatchID,
		Reporters:    data.Reporters,
		IsOrganizer:  data.Tournament.OwnerID == userID,
	}))
}

func (a *app) handleGenerate(w http.ResponseWriter, r *http.Request) {
	id, ok := urlID(w, r, "Invalid tournament ID")
	if !ok || !a.requireOrganizer(w, r, id) {
		return
	}

	if _, err := a.bracketService.GenerateBracket(r.Context(), id); err != nil {
		httputil.Error(w, "Failed to generate bracket", err)
		return
	}
	w.Header().Set("HX-Redirect", fmt.Sprintf("/tournaments/%s", id))
	w.WriteHeader(http.StatusOK)
}

func (a *app) handleLock(locked bool) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, ok := urlID(w, r, "Invalid tournament ID")
		if !ok || !a.requireOrganizer(w, r, id) {
			return
		}

		if _, err := a.bracketService.SetLocked(r.Context(), id, locked); err != nil {
			httputil.Error(w, "Failed to change bracket lock", err)
			return
		}
		w.Header().Set("HX-Redirect", fmt.Sprintf("/tournaments/%s", id))
		w.WriteHeader(http.StatusOK)
	}
}

func (a *app) handleReport(w http.ResponseWriter, r *http.Request) {
	matchID, ok := urlID(w, r, "Invalid match ID")
	if !ok {
		return
	}
	if err := r.ParseForm(); err != nil {
		httputil.BadRequest(w, "Invalid form data", err)
		return
	}
	scoreA, errA := strconv.Atoi(r.Form.Get("score_a"))
	scoreB, errB := strconv.Atoi(r.Form.Get("score_b"))
	if errA != nil || errB != nil {
		httputil.BadRequest(w, "Scores must be whole numbers", nil)
		return
	}

	reporterID, _ := middleware.GetUserIDFromContext(r.Context())
	match, err := a.matchService.ReportResult(r.Context(), matchID, scoreA, scoreB, reporterID)
	if err != nil {
		httputil.Error(w, "Match not found", err)
		return
	}
	a.renderMatch(w, r, match, false)
}

func (a *app) handleVerify(w http.ResponseWriter, r *http.Request) {
	match, ok := a.organizerMatch(w, r)
	if !ok {
		return
	}

	match, err := a.matchService.VerifyAndApply(r.Context(), match.ID)
	if err != nil {
		httputil.Error(w, "Failed to verify match", err)
		return
	}
	a.renderMatch(w, r, match, true)
}

func (a *app) handleSetWinner(w http.ResponseWriter, r *http.Request) {
	match, ok := a.organizerMatch(w, r)
	if !ok {
		return
	}
	if err := r.ParseForm(); err != nil {
		httputil.BadRequest(w, "Invalid form data", err)
		return
	}

	match, err := a.matchService.AdminSetWinner(r.Context(), match.ID, r.Form.Get("who"))
	if err != nil {
		httputil.Error(w, "Failed to set winner", err)
		return
	}
	a.renderMatch(w, r, match, true)
}

func (a *app) handleDispute(w http.ResponseWriter, r *http.Request) {
	match, ok := a.organizerMatch(w, r)
	if !ok {
		return
	}
	if err := r.ParseForm(); err != nil {
		httputil.BadRequest(w, "Invalid form data", err)
		return
	}
	disputed, err := strconv.ParseBool(r.Form.Get("disputed"))
	if err != nil {
		httputil.BadRequest(w, "Invalid dispute flag", err)
		return
	}

	match, err = a.matchService.SetDisputed(r.Context(), match.ID, disputed)
	if err != nil {
		httputil.Error(w, "Failed to update dispute", err)
		return
	}
	a.renderMatch(w, r, match, true)
}

// organizerMatch loads the match in the URL and checks the caller organizes its tournament.
func (a *app) organizerMatch(w http.ResponseWriter, r *http.Request) (*bracket.Match, bool) {
	matchID, ok := urlID(w, r, "Invalid match ID")
	if !ok {
		return nil, false
	}
	match, err := a.matchService.GetMatch(r.Context(), matchID)
	if err != nil {
		httputil.Error(w, "Match not found", err)
		return nil, false
	}
	if !a.requireOrganizer(w, r, match.TournamentID) {
		return nil, false
	}
	return match, true
}

func (a *app) requireOrganizer(w http.ResponseWriter, r *http.Request, tournamentID uuid.UUID) bool {
	userID, _ := middleware.GetUserIDFromContext(r.Context())
	isOrganizer, err := a.tournamentService.IsOrganizer(r.Context(), tournamentID, userID)
	if err != nil {
		httputil.Error(w, "Tournament not found", err)
		return false
	}
	if !isOrganizer {
		httputil.Forbidden(w, "Only the organizer can do that.", nil)
		return false
	}
	return true
}

func (a *app) renderMatch(w http.ResponseWriter, r *http.Request, match *bracket.Match, isOrganizer bool) {
	data, err := a.tournamentService.GetTournamentData(r.Context(), match.TournamentID)
	if err != nil {
		httputil.InternalServerError(w, "Failed to load tournament", err)
		return
	}
	labels := views.PrepareBracketData(data.Participants, nil)
	labels.Reporters = data.Reporters
	a.render(w, r, views.MatchFragment(*match, labels, isOrganizer))
}

func (a *app) render(w http.ResponseWriter, r *http.Request, component templ.Component) {
	if err := views.Render(w, r, component); err != nil {
		slog.Error("failed to render page", "path", r.URL.Path, "error", err)
	}
}

func urlID(w http.ResponseWriter, r *http.Request, msg string) (uuid.UUID, bool) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		httputil.BadRequest(w, msg, err)
		return uuid.Nil, false
	}
	return id, true
}
