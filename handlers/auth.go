package handlers

import (
	"context"
	"liveblog/services"
	"net/http"
	"strings"
)

const (
	UserIdHeader     = "X-Liveblog-User-Id"
	PrivilegesHeader = "X-Liveblog-Privileges"
)

type requestContextKey struct{}

func userFromHeaders(r *http.Request) *services.User {
	userId := strings.TrimSpace(r.Header.Get(UserIdHeader))
	if userId == "" {
		return nil
	}
	user := &services.User{ID: userId}
	for _, privilege := range strings.Split(r.Header.Get(PrivilegesHeader), ",") {
		if privilege = strings.TrimSpace(privilege); privilege != "" {
			user.Privileges = append(user.Privileges, privilege)
		}
	}
	return user
}

// Authorized lets the request through only for a user holding privilege.
func (h *HTTPHandler) Authorized(privilege string, next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		user := userFromHeaders(r)
		if user == nil {
			httpError(w, "Invalid user token", http.StatusUnauthorized)
			return
		}
		if !user.Can(privilege) {
			httpError(w, "Insufficient privileges for the requested operation.", http.StatusForbidden)
			return
		}
		rc := services.RequestContext{User: user}
		next(w, r.WithContext(context.WithValue(r.Context(), requestContextKey{}, rc)))
	}
}

func requestContext(r *http.Request) services.RequestContext {
	rc, _ := r.Context().Value(requestContextKey{}).(services.RequestContext)
	return rc
}
