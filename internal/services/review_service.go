package services

import (
	"context"

	"voltcart/internal/apperr"
	"voltcart/internal/domain"
	"voltcart/internal/repos"
	"voltcart/internal/validate"
)

type ReviewService struct {
	Prods   *repos.ProductRepo
	Reviews *repos.ReviewRepo
}

func NewReviewService(prods *repos.ProductRepo, reviews *repos.ReviewRepo) *ReviewService {
	return &ReviewService{Prods: prods, Reviews: reviews}
}

// Submit stores a review for moderation. Clients cannot approve their own.
func (s *ReviewService) Submit(ctx context.Context, in validate.ReviewInput, userID *string) (domain.Review, error) {
	in = in.Sanitized()
	p, err := s.Prods.Get(ctx, in.ProductID)
	if err != nil {
		return domain.Review{}, notFoundOr(err, "Product")
	}
	if !p.IsActive {
		return domain.Review{}, apperr.NotFound("Product")
	}
	rv := domain.Review{
		ProductID: p.ID,
		UserID:    userID,
		Name:      in.Name,
		Email:     in.Email,
		Rating:    *in.Rating,
		Comment:   in.Comment,
	}
	if err := s.Reviews.Create(ctx, &rv); err != nil {
		return domain.Review{}, apperr.MapDB(err)
	}
	return rv, nil
}
