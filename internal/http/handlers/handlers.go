// Package handlers provides HTTP API handlers for auviostream.
package handlers

import (
	"errors"
	"net/http"

	"github.com/danielgtaylor/huma/v2"

	"github.com/auviostream/auviostream/internal/models"
)

// apiError converts service errors into HTTP errors with user-facing
// French messages. The typed kinds map to precise statuses; anything
// unrecognized is a plain 500.
func apiError(err error) error {
	var ae *models.AuthError
	if errors.As(err, &ae) {
		switch ae.Kind {
		case models.AuthInvalidCredentials:
			return huma.NewError(http.StatusUnauthorized, "Identifiants invalides", err)
		case models.AuthEmptyServerResponse, models.AuthMalformedResponse:
			return huma.NewError(http.StatusBadGateway, "Réponse invalide du serveur", err)
		case models.AuthEntitlementExchangeFailed:
			return huma.NewError(http.StatusBadGateway, "Échec de l'échange de jetons", err)
		case models.AuthNetworkUnreachable:
			return huma.NewError(http.StatusBadGateway, "Serveur d'authentification inaccessible", err)
		}
	}

	var se *models.StreamError
	if errors.As(err, &se) {
		switch se.Kind {
		case models.StreamNotEntitled:
			return huma.NewError(http.StatusForbidden, "Contenu non disponible: abonnement requis", err)
		case models.StreamNoPlayableFormat:
			return huma.NewError(http.StatusNotFound, "Aucun format vidéo disponible", err)
		case models.StreamNotFound:
			return huma.NewError(http.StatusNotFound, "Impossible de trouver le flux vidéo", err)
		case models.StreamAuthenticationRequired:
			return huma.NewError(http.StatusUnauthorized, "Cette plateforme nécessite une authentification", err)
		case models.StreamUnknownPlatform:
			return huma.NewError(http.StatusNotFound, "Plateforme non supportée", err)
		case models.StreamUpstreamError:
			return huma.NewError(http.StatusBadGateway, "Erreur du service en amont", err)
		}
	}

	if errors.Is(err, models.ErrPlaylistNotFound) {
		return huma.Error404NotFound("Liste de lecture introuvable", err)
	}
	if errors.Is(err, models.ErrNameRequired) ||
		errors.Is(err, models.ErrTitleRequired) ||
		errors.Is(err, models.ErrContentIDRequired) ||
		errors.Is(err, models.ErrSlugRequired) ||
		errors.Is(err, models.ErrInvalidFraction) {
		return huma.Error422UnprocessableEntity(err.Error())
	}

	return huma.Error500InternalServerError("Erreur interne du serveur", err)
}
