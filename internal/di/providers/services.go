package providers

import (
	"github.com/samber/do/v2"

	"github.com/shelfscore/shelfscore-server/internal/auth"
	"github.com/shelfscore/shelfscore-server/internal/logger"
	"github.com/shelfscore/shelfscore-server/internal/media/images"
	"github.com/shelfscore/shelfscore-server/internal/service"
)

// ProvideRatingAggregator provides the per-book rating recompute serializer.
func ProvideRatingAggregator(i do.Injector) (*service.RatingAggregator, error) {
	storeHandle := do.MustInvoke[*StoreHandle](i)
	return service.NewRatingAggregator(storeHandle.Store), nil
}

// ProvideSessionService provides the session management service.
func ProvideSessionService(i do.Injector) (*service.SessionService, error) {
	storeHandle := do.MustInvoke[*StoreHandle](i)
	tokenService := do.MustInvoke[*auth.TokenService](i)
	log := do.MustInvoke[*logger.Logger](i)

	return service.NewSessionService(storeHandle.Store, tokenService, log.Logger), nil
}

// ProvideAuthService provides the authentication service.
func ProvideAuthService(i do.Injector) (*service.AuthService, error) {
	storeHandle := do.MustInvoke[*StoreHandle](i)
	tokenService := do.MustInvoke[*auth.TokenService](i)
	sessionService := do.MustInvoke[*service.SessionService](i)
	log := do.MustInvoke[*logger.Logger](i)

	return service.NewAuthService(storeHandle.Store, tokenService, sessionService, log.Logger), nil
}

// ProvideBookService provides the book catalog service.
func ProvideBookService(i do.Injector) (*service.BookService, error) {
	storeHandle := do.MustInvoke[*StoreHandle](i)
	thumbnails := do.MustInvoke[*images.Storage](i)
	log := do.MustInvoke[*logger.Logger](i)

	return service.NewBookService(storeHandle.Store, thumbnails, log.Logger), nil
}

// ProvideReviewService provides the review service.
func ProvideReviewService(i do.Injector) (*service.ReviewService, error) {
	storeHandle := do.MustInvoke[*StoreHandle](i)
	aggregator := do.MustInvoke[*service.RatingAggregator](i)
	log := do.MustInvoke[*logger.Logger](i)

	return service.NewReviewService(storeHandle.Store, aggregator, log.Logger), nil
}
