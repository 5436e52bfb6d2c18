package utils

import (
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"strings"
	"time"

	"github.com/ethereum/go-ethereum/accounts"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/golang-jwt/jwt"
	"github.com/pkg/errors"
)

const (
	SessionTTL   = 24 * time.Hour
	ChallengeTTL = 5 * time.Minute

	purposeSession   = "session"
	purposeChallenge = "challenge"
)

type Claims struct {
	Address string `json:"address"`
	Purpose string `json:"purpose"`
	Nonce   string `json:"nonce,omitempty"`
	jwt.StandardClaims
}

// GenerateJWT issues a session token for a verified wallet address.
func GenerateJWT(secret, address string) (string, error) {
	return sign(secret, Claims{
		Address: strings.ToLower(address),
		Purpose: purposeSession,
		StandardClaims: jwt.StandardClaims{
			ExpiresAt: time.Now().Add(SessionTTL).Unix(),
			IssuedAt:  time.Now().Unix(),
		},
	})
}

// ValidateJWT verifies a session token.
func ValidateJWT(secret, tokenString string) (*Claims, error) {
	claims, err := parse(secret, tokenString)
	if err != nil {
		return nil, err
	}
	if claims.Purpose != purposeSession {
		return nil, errors.New("not a session token")
	}
	return claims, nil
}

// GenerateChallenge issues a short-lived challenge for address and the
// message the wallet has to sign.
func GenerateChallenge(secret, address string) (challenge, message string, err error) {
	buf := make([]byte, 16)
	if _, err := rand.Read(buf); err != nil {
		return "", "", errors.Wrap(err, "generate nonce")
	}
	nonce := hex.EncodeToString(buf)

	challenge, err = sign(secret, Claims{
		Address: strings.ToLower(address),
		Purpose: purposeChallenge,
		Nonce:   nonce,
		StandardClaims: jwt.StandardClaims{
			ExpiresAt: time.Now().Add(ChallengeTTL).Unix(),
		},
	})
	if err != nil {
		return "", "", err
	}
	return challenge, ChallengeMessage(address, nonce), nil
}

// ChallengeMessage is the text a wallet signs to open a session.
func ChallengeMessage(address, nonce string) string {
	return fmt.Sprintf("Sign in to BarterX\nAddress: %s\nNonce: %s", strings.ToLower(address), nonce)
}

// VerifyChallenge checks that signature is address's personal_sign over the
// message bound to challenge.
func VerifyChallenge(secret, address, challenge, signature string) error {
	claims, err := parse(secret, challenge)
	if err != nil {
		return err
	}
	if claims.Purpose != purposeChallenge {
		return errors.New("not a challenge token")
	}
	if claims.Address != strings.ToLower(address) {
		return errors.New("challenge issued for another address")
	}

	recovered, err := RecoverPersonalSigner(ChallengeMessage(address, claims.Nonce), signature)
	if err != nil {
		return err
	}
	if recovered != common.HexToAddress(address) {
		return errors.New("signature does not match address")
	}
	return nil
}

// RecoverPersonalSigner recovers the address behind an EIP-191 personal_sign
// signature over message.
func RecoverPersonalSigner(message, signature string) (common.Address, error) {
	sig, err := hex.DecodeString(strings.TrimPrefix(signature, "0x"))
	if err != nil {
		return common.Address{}, errors.Wrap(err, "decode signature")
	}
	if len(sig) != crypto.SignatureLength {
		return common.Address{}, errors.Errorf("signature must be %d bytes", crypto.SignatureLength)
	}
	if sig[crypto.RecoveryIDOffset] >= 27 {
		sig[crypto.RecoveryIDOffset] -= 27
	}

	pub, err := crypto.SigToPub(accounts.TextHash([]byte(message)), sig)
	if err != nil {
		return common.Address{}, errors.Wrap(err, "recover public key")
	}
	return crypto.PubkeyToAddress(*pub), nil
}

func sign(secret string, claims Claims) (string, error) {
	if secret == "" {
		return "", errors.New("JWT secret not configured")
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(secret))
}

func parse(secret, tokenString string) (*Claims, error) {
	claims := &Claims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return []byte(secret), nil
	})
	if err != nil {
		return nil, err
	}
	if !token.Valid {
		return nil, jwt.ErrSignatureInvalid
	}
	return claims, nil
}
