package jwttoken

import (
	authmw "visitflow/pkg/platform/middleware/auth"
)

// JWTServiceAdapter lets the auth middleware validate agent tokens without depending on
// this package's claim type.
type JWTServiceAdapter struct {
	service *JWTService
}

func NewJWTServiceAdapter(service *JWTService) *JWTServiceAdapter {
	return &JWTServiceAdapter{service: service}
}

// ValidateToken checks signature, issuer and expiry, then keeps only the agent identity.
func (a *JWTServiceAdapter) ValidateToken(tokenString string) (*authmw.JWTClaims, error) {
	claims, err := a.service.ValidateToken(tokenString)
	if err != nil {
		return nil, err
	}
	return &authmw.JWTClaims{AgentID: claims.AgentID, PavilionID: claims.PavilionID}, nil
}
