package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/meghashyamc/marketsearch/db/docdb"
	"github.com/meghashyamc/marketsearch/logger"
	"github.com/meghashyamc/marketsearch/services/ingest"
	"github.com/meghashyamc/marketsearch/validation"
)

type ImportRequest struct {
	Path string `json:"path" validate:"valid_path"`
}

type ImportResponse struct {
	ID     string `json:"id"`
	Status *int   `json:"status,omitempty"`
}

func SetupImport(router *gin.Engine, logger logger.Logger, service *ingest.Service, validator *validation.Validator) {
	router.POST("/import", handleImport(service, logger, validator))
	router.GET("/import/:id", handleImportStatus(service, logger))
}

func handleImport(service *ingest.Service, logger logger.Logger, validator *validation.Validator) gin.HandlerFunc {
	return func(c *gin.Context) {
		request := ImportRequest{}
		if err := c.ShouldBindJSON(&request); err != nil {
			logger.Warn("could not extract expected params from import request", "err", err.Error())
			writeError(c, http.StatusBadRequest, "failed to extract request body parameters")
			return
		}

		if err := validator.Validate(request); err != nil {
			logger.Warn("could not validate import request", "err", err.Error())
			writeError(c, http.StatusBadRequest, err.Error())
			return
		}

		requestID, err := service.Start(request.Path)
		if err != nil {
			if errors.Is(err, ingest.ErrImportInProgress) {
				writeError(c, http.StatusConflict, err.Error())
				return
			}
			logger.Error("could not start import", "err", err.Error())
			writeError(c, http.StatusInternalServerError, err.Error())
			return
		}

		writeResponse(c, ImportResponse{ID: requestID}, http.StatusAccepted)
	}
}

func handleImportStatus(service *ingest.Service, logger logger.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		requestID := c.Param("id")

		status, err := service.GetStatus(requestID)
		if err != nil {
			if errors.Is(err, docdb.ErrNotFound) || errors.Is(err, docdb.ErrInvalidKey) {
				writeError(c, http.StatusNotFound, "import request not found")
				return
			}
			logger.Error("could not get import status", "request_id", requestID, "err", err.Error())
			writeError(c, http.StatusInternalServerError, err.Error())
			return
		}

		writeResponse(c, ImportResponse{ID: requestID, Status: &status}, http.StatusOK)
	}
}
