package handlers

import (
	"net/http"
	"net/http/httptest"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

func (s *APISuite) signed(method jwt.SigningMethod, claims jwt.RegisteredClaims, key interface{}) string {
	token, err := jwt.NewWithClaims(method, claims).SignedString(key)
	s.Require().NoError(err)
	return token
}

func (s *APISuite) TestAuthRejectsForgedTokens() {
	now := time.Now()
	valid := jwt.RegisteredClaims{
		Subject:   testAdmin,
		Issuer:    tokenIssuer,
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(now.Add(time.Hour)),
	}

	expired := valid
	expired.ExpiresAt = jwt.NewNumericDate(now.Add(-time.Minute))
	otherIssuer := valid
	otherIssuer.Issuer = "someone-else"
	noExpiry := valid
	noExpiry.ExpiresAt = nil
	noSubject := valid
	noSubject.Subject = ""

	tests := map[string]string{
		"expired":      s.signed(jwt.SigningMethodHS256, expired, []byte(testSecret)),
		"wrong issuer": s.signed(jwt.SigningMethodHS256, otherIssuer, []byte(testSecret)),
		"no expiry":    s.signed(jwt.SigningMethodHS256, noExpiry, []byte(testSecret)),
		"no subject":   s.signed(jwt.SigningMethodHS256, noSubject, []byte(testSecret)),
		"wrong key":    s.signed(jwt.SigningMethodHS256, valid, []byte("another-secret-another-secret-00")),
		"alg none":     s.signed(jwt.SigningMethodNone, valid, jwt.UnsafeAllowNoneSignatureType),
	}
	for name, token := range tests {
		s.token = token
		w, env := s.do(http.MethodGet, "/admin/submissions", nil)
		s.Equal(http.StatusUnauthorized, w.Code, name)
		s.Equal("INVALID_TOKEN", env.Error.Code, name)
	}

	s.token = s.signed(jwt.SigningMethodHS256, valid, []byte(testSecret))
	w, _ := s.do(http.MethodGet, "/admin/submissions", nil)
	s.Equal(http.StatusOK, w.Code)
}

func (s *APISuite) TestAuthNeedsBearerScheme() {
	s.login()
	for _, header := range []string{s.token, "Token " + s.token, "Bearer", "bearer " + s.token} {
		req := httptest.NewRequest(http.MethodGet, "/admin/submissions", nil)
		req.Header.Set("Authorization", header)
		w := httptest.NewRecorder()
		s.router.ServeHTTP(w, req)
		s.Equal(http.StatusUnauthorized, w.Code, header)
	}
}
