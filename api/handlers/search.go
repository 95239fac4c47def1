package handlers

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/meghashyamc/marketsearch/logger"
	"github.com/meghashyamc/marketsearch/services/search"
	"github.com/meghashyamc/marketsearch/validation"
)

const (
	defaultPage  = "1"
	defaultLimit = "12"
)

// SearchParams holds the raw query parameters. Numbers stay strings until
// validated so malformed values get their own messages.
type SearchParams struct {
	Query string `form:"q" json:"q" validate:"query_required,query_min,query_max"`
	Type  string `form:"type" json:"type" validate:"search_type"`
	Page  string `form:"page" json:"page" validate:"page_int,page_min,page_max"`
	Limit string `form:"limit" json:"limit" validate:"limit_int,limit_min,limit_max"`
	Sort  string `form:"sort" json:"sort" validate:"sort_mode"`
}

func (p *SearchParams) setDefaults() {
	if p.Type == "" {
		p.Type = search.TypeAll
	}
	if p.Page == "" {
		p.Page = defaultPage
	}
	if p.Limit == "" {
		p.Limit = defaultLimit
	}
	if p.Sort == "" {
		p.Sort = string(search.SortRelevance)
	}
}

// toRequest assumes the params passed validation.
func (p *SearchParams) toRequest() search.Request {
	page, _ := strconv.Atoi(strings.TrimSpace(p.Page))
	limit, _ := strconv.Atoi(strings.TrimSpace(p.Limit))

	return search.Request{
		Query: strings.TrimSpace(p.Query),
		Type:  p.Type,
		Page:  page,
		Limit: limit,
		Sort:  search.SortMode(p.Sort),
	}
}

func SetupSearch(router *gin.Engine, logger logger.Logger, service *search.Service, validator *validation.Validator) {
	router.GET("/search", handleSearch(service, logger, validator))
}

func handleSearch(service *search.Service, logger logger.Logger, validator *validation.Validator) gin.HandlerFunc {
	return func(c *gin.Context) {
		params := SearchParams{}
		if err := c.ShouldBindQuery(&params); err != nil {
			logger.Warn("could not extract expected params from search request", "err", err.Error())
			writeError(c, http.StatusBadRequest, "failed to extract query parameters")
			return
		}
		params.setDefaults()

		if err := validator.Validate(params); err != nil {
			logger.Warn("could not validate search request", "err", err.Error())
			writeError(c, http.StatusBadRequest, err.Error())
			return
		}

		results, err := service.Search(c.Request.Context(), params.toRequest())
		if err != nil {
			logger.Error("search failed", "err", err.Error())
			writeError(c, http.StatusInternalServerError, err.Error())
			return
		}

		writeResponse(c, results, http.StatusOK)
	}
}
