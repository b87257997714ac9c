package main

import (
	"errors"
	"net/http"

	"github.com/sushihentaime/myblog/internal/authorservice"
	"github.com/sushihentaime/myblog/internal/common"
)

type registerAuthorRequest struct {
	Username string `json:"username"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

func (app *application) registerAuthorHandler(w http.ResponseWriter, r *http.Request) {
	var input registerAuthorRequest

	err := app.parseJSON(w, r, &input)
	if err != nil {
		app.badRequestErrorResponse(w, r, err)
		return
	}

	author, _, err := app.authorService.RegisterAuthor(r.Context(), input.Username, input.Email, input.Password)
	if err != nil {
		var validationErr common.ValidationError
		switch {
		case errors.Is(err, authorservice.ErrDuplicateEmail):
			app.failedValidationErrorResponse(w, r, map[string]string{"email": "an author with this email address already exists"})
		case errors.Is(err, authorservice.ErrDuplicateUsername):
			app.failedValidationErrorResponse(w, r, map[string]string{"username": "this username is already taken"})
		case errors.As(err, &validationErr):
			app.failedValidationErrorResponse(w, r, validationErr.Errors)
		default:
			app.serverErrorResponse(w, r, err)
		}
		return
	}

	err = app.writeJSON(w, http.StatusCreated, envelope{"author": author}, nil)
	if err != nil {
		app.serverErrorResponse(w, r, err)
	}
}

type activateAuthorRequest struct {
	Token string `json:"token"`
}

func (app *application) activateAuthorHandler(w http.ResponseWriter, r *http.Request) {
	var input activateAuthorRequest

	err := app.parseJSON(w, r, &input)
	if err != nil {
		app.badRequestErrorResponse(w, r, err)
		return
	}

	err = app.authorService.ActivateAuthor(r.Context(), input.Token)
	if err != nil {
		var validationErr common.ValidationError
		switch {
		case errors.Is(err, authorservice.ErrNotFound):
			app.failedValidationErrorResponse(w, r, map[string]string{"token": "invalid or expired activation token"})
		case errors.Is(err, authorservice.ErrEditConflict):
			app.writeErrorResponse(w, r, http.StatusConflict, "unable to update the record due to an edit conflict, please try again")
		case errors.As(err, &validationErr):
			app.failedValidationErrorResponse(w, r, validationErr.Errors)
		default:
			app.serverErrorResponse(w, r, err)
		}
		return
	}

	err = app.writeJSON(w, http.StatusOK, envelope{"message": "author account activated"}, nil)
	if err != nil {
		app.serverErrorResponse(w, r, err)
	}
}

type loginAuthorRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

func (app *application) loginAuthorHandler(w http.ResponseWriter, r *http.Request) {
	var input loginAuthorRequest

	err := app.parseJSON(w, r, &input)
	if err != nil {
		app.badRequestErrorResponse(w, r, err)
		return
	}

	token, err := app.authorService.LoginAuthor(r.Context(), input.Username, input.Password)
	if err != nil {
		var validationErr common.ValidationError
		switch {
		case errors.Is(err, authorservice.ErrAuthenticationFailure):
			app.invalidCredentialsErrorResponse(w, r)
		case errors.As(err, &validationErr):
			app.failedValidationErrorResponse(w, r, validationErr.Errors)
		default:
			app.serverErrorResponse(w, r, err)
		}
		return
	}

	err = app.writeJSON(w, http.StatusOK, envelope{"token": token}, nil)
	if err != nil {
		app.serverErrorResponse(w, r, err)
	}
}

func (app *application) logoutAuthorHandler(w http.ResponseWriter, r *http.Request) {
	author := app.getAuthorContext(r)

	err := app.authorService.LogoutAuthor(r.Context(), author.ID)
	if err != nil {
		app.serverErrorResponse(w, r, err)
		return
	}

	err = app.writeJSON(w, http.StatusOK, envelope{"message": "author logged out"}, nil)
	if err != nil {
		app.serverErrorResponse(w, r, err)
	}
}
