package http

import (
	"context"
	"errors"
	"net/http"

	"kamai/internal/auth"
	"kamai/internal/core"
	"kamai/internal/directory"
	applog "kamai/internal/log"
)

// requireAdmin rejects requests from sessions that have not unlocked admin
// mode.
func (s *Server) requireAdmin(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !s.gate.Enabled() || !s.sessions.Get(r.Context()).IsAdmin {
			ForbiddenError("Admin mode is required for this action.").Write(w)
			return
		}
		next.ServeHTTP(w, r)
	})
}

func (s *Server) handleAdminLogin(w http.ResponseWriter, r *http.Request) {
	if resp := parseForm(w, r); resp != nil {
		resp.Write(w)
		return
	}
	ctx := r.Context()
	logger := applog.FromContext(ctx).WithComponent(applog.ComponentAuth)

	err := s.gate.Check(r.PostForm.Get("password"))
	switch {
	case errors.Is(err, auth.ErrAdminDisabled):
		ForbiddenError("Admin mode is not enabled on this server.").Write(w)
		return
	case err != nil:
		logger.WarnContext(ctx, "Admin login rejected",
			applog.NewFields().WithOperation(applog.OpLogin).WithClientIP(s.detector.ExtractClientIP(r)).ToSlice()...)
		s.respond(w, r, NewHTMXResponse().Status(http.StatusForbidden), tmplAdmin, s.adminView(false, "Incorrect password."))
		return
	}

	ctx = s.sessions.Rotate(ctx, w)
	s.sessions.SetAdmin(ctx, true)
	logger.InfoContext(ctx, "Admin mode unlocked", applog.FieldOperation, applog.OpLogin)
	s.respond(w, r,
		NewHTMXResponse().TriggerAdminChanged(true).TriggerDirectoryChanged(),
		tmplAdmin, s.adminView(true, ""))
}

func (s *Server) handleAdminLogout(w http.ResponseWriter, r *http.Request) {
	s.sessions.SetAdmin(r.Context(), false)
	s.respond(w, r,
		NewHTMXResponse().TriggerAdminChanged(false).TriggerDirectoryChanged(),
		tmplAdmin, s.adminView(false, ""))
}

func (s *Server) handleAdminCreate(w http.ResponseWriter, r *http.Request) {
	if resp := parseForm(w, r); resp != nil {
		resp.Write(w)
		return
	}
	ctx := r.Context()
	form := creatorFormFrom(r.PostForm)
	if err := form.Validate(); err != nil {
		view := s.adminView(true, validationMessage(err))
		view.Form = form
		s.respond(w, r, NewHTMXResponse().Status(http.StatusUnprocessableEntity), tmplAdmin, view)
		return
	}

	cctx, cancel := context.WithTimeout(ctx, storeTimeout)
	defer cancel()
	c, err := s.dir.Insert(cctx, form.Name, form.FollowerLabel, form.ProfileLink)
	if err != nil {
		applog.LogError(ctx, "Add featured creator failed", err, applog.ComponentDirectory, applog.OpInsert, nil)
		view := s.adminView(true, storeErrorMessage("add the creator", err))
		view.Form = form
		s.respond(w, r, NewHTMXResponse().Status(http.StatusServiceUnavailable), tmplAdmin, view)
		return
	}

	s.respond(w, r,
		NewHTMXResponse().
			TriggerDirectoryChanged().
			TriggerFormReset().
			TriggerSuccessNotification("Added "+c.Name+" to the featured creators."),
		tmplAdmin, s.adminView(true, ""))
}

// handleAdminDelete removes a creator and answers with the refreshed list.
func (s *Server) handleAdminDelete(w http.ResponseWriter, r *http.Request) {
	id, ok := creatorID(r)
	if !ok {
		BadRequestError("Invalid creator id.").Write(w)
		return
	}
	ctx := r.Context()

	cctx, cancel := context.WithTimeout(ctx, storeTimeout)
	defer cancel()
	err := s.dir.Delete(cctx, id)

	resp := NewHTMXResponse()
	switch {
	case errors.Is(err, directory.ErrNotFound):
		resp.TriggerNotification(NotificationWarning, "That creator was already removed.", 4000)
	case err != nil:
		applog.LogError(ctx, "Remove featured creator failed", err, applog.ComponentDirectory, applog.OpDelete,
			applog.NewFields().WithCreator(id, ""))
		ServiceUnavailableError(storeErrorMessage("remove the creator", err)).
			TriggerErrorNotification("The creator could not be removed.").
			Write(w)
		return
	default:
		resp.TriggerSuccessNotification("Creator removed.")
	}

	view := s.loadDirectory(ctx, true)
	if view.Error != "" {
		resp.Status(http.StatusServiceUnavailable)
	}
	s.respond(w, r, resp, tmplCreators, view)
}

func validationMessage(err error) string {
	switch {
	case errors.Is(err, core.ErrEmptyName):
		return "Enter the creator's name."
	case errors.Is(err, core.ErrNameTooLong):
		return "The name can be at most 100 characters."
	case errors.Is(err, core.ErrFollowerLabelLong):
		return "The follower count can be at most 32 characters."
	case errors.Is(err, core.ErrInvalidLink):
		return "The profile link must start with http:// or https://."
	default:
		return err.Error()
	}
}
