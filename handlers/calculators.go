package handlers

import (
	"net/http"

	"github.com/bitirgenalperen/ilkevim-sub000/pkg/calculator"
	"github.com/bitirgenalperen/ilkevim-sub000/types"

	"github.com/gin-gonic/gin"
)

func SDLT(c *gin.Context) {
	var in calculator.SDLTInput
	if err := c.ShouldBindJSON(&in); err != nil {
		badRequest(c, "invalid request body")
		return
	}
	res, err := calculator.CalculateSDLT(in)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, types.NewSuccessResponse(gin.H{
		"totalTax":      res.TotalTax,
		"breakdown":     res.Breakdown,
		"effectiveRate": res.EffectiveRate(),
	}))
}

// Mortgage enforces the calculator form ranges before computing.
func Mortgage(c *gin.Context) {
	var in calculator.MortgageInput
	if err := c.ShouldBindJSON(&in); err != nil {
		badRequest(c, "invalid request body")
		return
	}
	if err := in.Validate(); err != nil {
		respondError(c, err)
		return
	}
	res, err := calculator.CalculateMortgage(in)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, types.NewSuccessResponse(res))
}
