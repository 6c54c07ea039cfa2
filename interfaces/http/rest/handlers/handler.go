// Package handlers exposes the parsing pipeline over HTTP.
package handlers

import (
	"net/http"

	"lifelog/pkg/auth"
	"lifelog/pkg/common"
	apperrors "lifelog/pkg/errors"
)

// maxBodyBytes bounds request bodies; utterances are capped well below this
const maxBodyBytes = 64 << 10

// requireUser returns the authenticated user id or writes a 401
func requireUser(w http.ResponseWriter, r *http.Request) (string, bool) {
	user, err := auth.GetUserFromContext(r.Context())
	if err != nil || user.UserID == "" {
		common.RespondError(w, http.StatusUnauthorized, common.StandardErrorCodes.Unauthorized, "Unauthorized")
		return "", false
	}
	return user.UserID, true
}

// decodeBody parses a JSON body, rejecting unknown fields
func decodeBody(w http.ResponseWriter, r *http.Request, v interface{}) bool {
	if err := common.ParseJSONBody(r, v, maxBodyBytes); err != nil {
		common.RespondError(w, http.StatusBadRequest, common.StandardErrorCodes.BadRequest, "Invalid request body: "+err.Error())
		return false
	}
	return true
}

// unexpectedResult reports a bus result of the wrong type
func unexpectedResult(errs *apperrors.ErrorHandler, w http.ResponseWriter, r *http.Request) {
	errs.Handle(w, r, apperrors.NewInternalError("unexpected handler result"))
}
