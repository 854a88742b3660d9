package http

import (
	"net/http"

	"github.com/mind-engage/learnpath/internal/learning"
)

type registerRequest struct {
	Username   string `json:"username" validate:"required,min=3,max=50"`
	Email      string `json:"email" validate:"required,email"`
	Password   string `json:"password" validate:"required,min=8"`
	IsEducator bool   `json:"is_educator"`
}

// POST /users
func RegisterHandler(svc *learning.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req registerRequest
		if !decode(w, r, &req) {
			return
		}
		u, err := svc.Register(r.Context(), learning.NewUser{
			Username:   req.Username,
			Email:      req.Email,
			Password:   req.Password,
			IsEducator: req.IsEducator,
		})
		if err != nil {
			writeError(w, r, err)
			return
		}
		writeJSON(w, http.StatusCreated, u)
	}
}

// GET /users/me
func MeHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, currentUser(r))
	}
}

type updateMeRequest struct {
	Username   *string `json:"username" validate:"omitempty,min=3,max=50"`
	Email      *string `json:"email" validate:"omitempty,email"`
	Password   *string `json:"password" validate:"omitempty,min=8"`
	IsActive   *bool   `json:"is_active"`
	IsEducator *bool   `json:"is_educator"`
}

// PUT /users/me
func UpdateMeHandler(svc *learning.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req updateMeRequest
		if !decode(w, r, &req) {
			return
		}
		u, err := svc.UpdateUser(r.Context(), currentUser(r).ID, learning.UserPatch{
			Username:   req.Username,
			Email:      req.Email,
			Password:   req.Password,
			IsActive:   req.IsActive,
			IsEducator: req.IsEducator,
		})
		if err != nil {
			writeError(w, r, err)
			return
		}
		writeJSON(w, http.StatusOK, u)
	}
}

// GET /users?skip=&limit=
func ListUsersHandler(svc *learning.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		users, err := svc.ListUsers(r.Context(), pageFromQuery(r))
		if err != nil {
			writeError(w, r, err)
			return
		}
		writeJSON(w, http.StatusOK, users)
	}
}

// GET /users/{userID}
func GetUserHandler(svc *learning.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, ok := idParam(w, r, "userID")
		if !ok {
			return
		}
		u, err := svc.GetUser(r.Context(), id)
		if err != nil {
			writeError(w, r, err)
			return
		}
		writeJSON(w, http.StatusOK, u)
	}
}
