// Copyright 2025 The Alumap Authors
// SPDX-License-Identifier: Apache-2.0

package server

import (
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
)

const uidKey = "uid"

// Claims are the JWT claims identifying the caller.
type Claims struct {
	UID int64 `json:"uid"`
	jwt.RegisteredClaims
}

// NewToken signs an HS256 token for uid, valid for ttl.
func NewToken(secret string, uid int64, ttl time.Duration) (string, error) {
	now := time.Now()
	claims := &Claims{
		UID: uid,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
			IssuedAt:  jwt.NewNumericDate(now),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)

	return token.SignedString([]byte(secret))
}

// ParseToken validates an HS256 token and returns its claims.
func ParseToken(secret, tokenString string) (*Claims, error) {
	if tokenString == "" {
		return nil, errors.New("token is required")
	}

	token, err := jwt.ParseWithClaims(tokenString, &Claims{}, func(_ *jwt.Token) (any, error) {
		return []byte(secret), nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
	if err != nil {
		return nil, err
	}

	claims, ok := token.Claims.(*Claims)
	if !ok || !token.Valid {
		return nil, errors.New("invalid token")
	}

	return claims, nil
}

func requireAuth(secret string) gin.HandlerFunc {
	return func(ctx *gin.Context) {
		tokenString, found := strings.CutPrefix(ctx.GetHeader("Authorization"), "Bearer ")
		if !found {
			ctx.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})

			return
		}

		claims, err := ParseToken(secret, tokenString)
		if err != nil {
			ctx.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})

			return
		}

		ctx.Set(uidKey, claims.UID)
		ctx.Next()
	}
}

func callerID(ctx *gin.Context) int64 {
	return ctx.GetInt64(uidKey)
}
