// Basketrec - Market Basket Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/basketrec

package api

import (
	"errors"
	"net/http"

	"github.com/tomtom215/basketrec/internal/auth"
	"github.com/tomtom215/basketrec/internal/database"
	"github.com/tomtom215/basketrec/internal/logging"
	"github.com/tomtom215/basketrec/internal/models"
	"github.com/tomtom215/basketrec/internal/recommend"
	"github.com/tomtom215/basketrec/internal/validation"
)

// ProductRecommendation is one item of a product recommendation.
type ProductRecommendation struct {
	Product          *models.Product `json:"product"`
	Score            float64         `json:"score"`
	AssociationCount int             `json:"associationCount"`
	Popularity       int             `json:"popularity"`
	IsFallback       bool            `json:"isFallback"`
}

// CartRecommendation is one item of a cart recommendation.
type CartRecommendation struct {
	Product    *models.Product `json:"product"`
	Score      float64         `json:"score"`
	Matches    int             `json:"matches"`
	IsFallback bool            `json:"isFallback"`
}

// TrendingProduct is one item of the trending list.
type TrendingProduct struct {
	Product    *models.Product `json:"product"`
	Popularity int             `json:"popularity"`
}

// NewArrival is one item of the new arrivals list.
type NewArrival struct {
	Product *models.Product `json:"product"`
}

// PersonalizedRecommendation is one item of a personalized recommendation.
type PersonalizedRecommendation struct {
	Product *models.Product `json:"product"`
	Score   float64         `json:"score"`
}

func candidateIDs(candidates []recommend.Candidate) []string {
	ids := make([]string, len(candidates))
	for i := range candidates {
		ids[i] = candidates[i].ProductID
	}
	return ids
}

func anyFallback(candidates []recommend.Candidate) bool {
	for i := range candidates {
		if candidates[i].IsFallback {
			return true
		}
	}
	return false
}

// RecommendByProduct handles POST /api/v1/recommend/product
//
// @Summary Products frequently bought together with a product
// @Description Ranks products co-purchased with productId. Products without co-purchase history fall back to popularity ranking (isFallback=true).
// @Tags Recommend
// @Accept json
// @Produce json
// @Param request body ProductRequest true "Source product"
// @Success 200 {object} APIResponse{data=[]ProductRecommendation} "Recommendations"
// @Failure 400 {object} APIResponse "Invalid request"
// @Failure 404 {object} APIResponse "Source product not found"
// @Failure 503 {object} APIResponse "Knowledge not available"
// @Router /recommend/product [post]
func (h *Handler) RecommendByProduct(w http.ResponseWriter, r *http.Request) {
	var req ProductRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}

	ctx, cancel := h.withTimeout(r.Context())
	defer cancel()

	source, err := h.catalog.GetProduct(ctx, req.ProductID)
	if err != nil {
		if errors.Is(err, database.ErrProductNotFound) {
			NewResponseWriter(w, r).NotFound("Product not found")
			return
		}
		respondServiceError(w, r, err)
		return
	}

	candidates, err := h.recommender.ByProduct(ctx, req.ProductID, req.Limit, req.ExcludeIDs)
	if err != nil {
		respondServiceError(w, r, err)
		return
	}

	products := h.enrich(ctx, candidateIDs(candidates))
	items := make([]ProductRecommendation, 0, len(candidates))
	for i := range candidates {
		if products[i] == nil {
			continue
		}
		c := candidates[i]
		items = append(items, ProductRecommendation{
			Product:          products[i],
			Score:            c.Score,
			AssociationCount: c.AssociationCount,
			Popularity:       c.Popularity,
			IsFallback:       c.IsFallback,
		})
	}

	version := h.recommender.Status().Version
	NewResponseWriter(w, r).List(items, len(items), func(resp *APIResponse) {
		resp.SourceProduct = &ProductRef{ID: source.ID, Name: source.Name}
		resp.Meta.KnowledgeVersion = version
		resp.Meta.Fallback = anyFallback(candidates)
	})
}

// RecommendByCart handles POST /api/v1/recommend/cart
//
// @Summary Products complementing a cart
// @Description Sums co-purchase evidence over every cart item, weighted by quantity. Products already in the cart are never recommended. An empty cart returns an empty list.
// @Tags Recommend
// @Accept json
// @Produce json
// @Param request body CartRequest true "Cart contents"
// @Success 200 {object} APIResponse{data=[]CartRecommendation} "Recommendations"
// @Failure 400 {object} APIResponse "Invalid request"
// @Failure 503 {object} APIResponse "Knowledge not available"
// @Router /recommend/cart [post]
func (h *Handler) RecommendByCart(w http.ResponseWriter, r *http.Request) {
	var req CartRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}

	if len(req.CartItems) == 0 {
		NewResponseWriter(w, r).List([]CartRecommendation{}, 0, nil)
		return
	}

	ctx, cancel := h.withTimeout(r.Context())
	defer cancel()

	candidates, err := h.recommender.ByCart(ctx, req.CartItems, req.Limit)
	if err != nil {
		respondServiceError(w, r, err)
		return
	}

	products := h.enrich(ctx, candidateIDs(candidates))
	items := make([]CartRecommendation, 0, len(candidates))
	for i := range candidates {
		if products[i] == nil {
			continue
		}
		items = append(items, CartRecommendation{
			Product: products[i],
			Score:   candidates[i].Score,
			Matches: candidates[i].Matches,
		})
	}

	version := h.recommender.Status().Version
	NewResponseWriter(w, r).List(items, len(items), func(resp *APIResponse) {
		resp.Meta.KnowledgeVersion = version
	})
}

// Trending handles GET /api/v1/recommend/trending
//
// @Summary Most popular products
// @Description Products ordered by the number of qualifying orders containing them.
// @Tags Recommend
// @Produce json
// @Param limit query int false "Maximum results (default 10)"
// @Success 200 {object} APIResponse{data=[]TrendingProduct} "Trending products"
// @Failure 503 {object} APIResponse "Knowledge not available"
// @Router /recommend/trending [get]
func (h *Handler) Trending(w http.ResponseWriter, r *http.Request) {
	limit, ok := parseLimit(w, r)
	if !ok {
		return
	}

	ctx, cancel := h.withTimeout(r.Context())
	defer cancel()

	candidates, err := h.recommender.Trending(ctx, limit)
	if err != nil {
		respondServiceError(w, r, err)
		return
	}

	products := h.enrich(ctx, candidateIDs(candidates))
	items := make([]TrendingProduct, 0, len(candidates))
	for i := range candidates {
		if products[i] == nil {
			continue
		}
		items = append(items, TrendingProduct{Product: products[i], Popularity: candidates[i].Popularity})
	}

	NewResponseWriter(w, r).List(items, len(items), nil)
}

// NewArrivals handles GET /api/v1/recommend/new
//
// @Summary Newest products
// @Description Most recently created catalog products. Does not need recommendation knowledge.
// @Tags Recommend
// @Produce json
// @Param limit query int false "Maximum results (default 10)"
// @Success 200 {object} APIResponse{data=[]NewArrival} "New arrivals"
// @Failure 502 {object} APIResponse "Catalog unavailable"
// @Router /recommend/new [get]
func (h *Handler) NewArrivals(w http.ResponseWriter, r *http.Request) {
	limit, ok := parseLimit(w, r)
	if !ok {
		return
	}
	if limit <= 0 {
		limit = h.cfg.DefaultLimit
	}

	ctx, cancel := h.withTimeout(r.Context())
	defer cancel()

	products, err := h.catalog.NewArrivals(ctx, limit)
	if err != nil {
		respondServiceError(w, r, err)
		return
	}

	items := make([]NewArrival, len(products))
	for i := range products {
		items[i] = NewArrival{Product: &products[i]}
	}
	NewResponseWriter(w, r).List(items, len(items), nil)
}

// Personalized handles GET /api/v1/recommend/personalized
//
// @Summary Recommendations from a user's recent purchases
// @Description Combines product recommendations for everything in the user's five most recent orders. Users without history get trending products. The user is the token subject; userId is only honored for unauthenticated deployments.
// @Tags Recommend
// @Produce json
// @Security BearerAuth
// @Param limit query int false "Maximum results (default 10)"
// @Param userId query string false "User id when authentication is disabled"
// @Success 200 {object} APIResponse{data=[]PersonalizedRecommendation} "Recommendations"
// @Failure 400 {object} APIResponse "Missing user"
// @Failure 401 {object} APIResponse "Not authenticated"
// @Failure 503 {object} APIResponse "Knowledge not available"
// @Router /recommend/personalized [get]
func (h *Handler) Personalized(w http.ResponseWriter, r *http.Request) {
	limit, ok := parseLimit(w, r)
	if !ok {
		return
	}

	userID := personalizationUser(r)
	if verr := validation.ValidateVar("userId", userID, "required,identifier,max=128"); verr != nil {
		NewResponseWriter(w, r).ValidationError(verr.Error(), verr.Details())
		return
	}

	ctx, cancel := h.withTimeout(r.Context())
	defer cancel()

	candidates, err := h.recommender.Personalized(ctx, userID, limit)
	if err != nil {
		respondServiceError(w, r, err)
		return
	}

	products := h.enrich(ctx, candidateIDs(candidates))
	items := make([]PersonalizedRecommendation, 0, len(candidates))
	for i := range candidates {
		if products[i] == nil {
			continue
		}
		items = append(items, PersonalizedRecommendation{Product: products[i], Score: candidates[i].Score})
	}

	logging.Ctx(ctx).Debug().Str("user_id", userID).Int("count", len(items)).Msg("personalized recommendations served")
	NewResponseWriter(w, r).List(items, len(items), func(resp *APIResponse) {
		resp.Meta.Fallback = len(candidates) > 0 && candidates[0].Matches == 0
	})
}

// personalizationUser returns the token subject, or the userId query
// parameter when the caller is anonymous.
func personalizationUser(r *http.Request) string {
	if subject := auth.GetAuthSubject(r.Context()); subject != nil && !subject.Anonymous && subject.ID != "" {
		return subject.ID
	}
	return r.URL.Query().Get("userId")
}
