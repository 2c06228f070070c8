package encryption

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"strings"

	"golang.org/x/crypto/pbkdf2"

	"github.com/Guilherme-G-Cadilhe/Go-ChainVault-Custody-Engine/internal/domain"
)

const (
	ivLength   = 16
	saltLength = 64
	keyLength  = 32
	tagLength  = 16
	iterations = 100_000
)

// Service cifra e decifra chaves privadas com envelope AES-256-GCM.
// O formato do envelope é iv:salt:tag:ciphertext, todos os campos em hex.
// IV e salt são aleatórios por chamada: cifrar a mesma chave duas vezes
// NUNCA produz o mesmo envelope (evita correlação de ciphertext).
type Service struct {
	masterKey []byte
}

// New falha na construção se a master key estiver ausente ou curta demais.
// Usamos apenas os primeiros 32 bytes, o resto é ignorado.
func New(masterKey string) (*Service, error) {
	if len(masterKey) < keyLength {
		return nil, domain.ErrEncryptionKeyTooShort
	}
	return &Service{masterKey: []byte(masterKey[:keyLength])}, nil
}

// Encrypt produz o envelope para um segredo não vazio.
// A chave AES é derivada por PBKDF2-SHA256 com 100k iterações sobre o salt
// aleatório, então força bruta contra um envelope isolado é cara mesmo
// que a master key vaze parcialmente.
func (s *Service) Encrypt(secret []byte) (string, error) {
	if len(secret) == 0 {
		return "", errors.New("secret must be a non-empty value")
	}

	iv := make([]byte, ivLength)
	if _, err := rand.Read(iv); err != nil {
		return "", fmt.Errorf("failed to generate iv: %w", err)
	}
	salt := make([]byte, saltLength)
	if _, err := rand.Read(salt); err != nil {
		return "", fmt.Errorf("failed to generate salt: %w", err)
	}

	aead, err := s.aead(salt)
	if err != nil {
		return "", err
	}

	// Seal devolve ciphertext||tag; separamos o tag no seu próprio campo.
	sealed := aead.Seal(nil, iv, secret, nil)
	ciphertext := sealed[:len(sealed)-tagLength]
	tag := sealed[len(sealed)-tagLength:]

	return strings.Join([]string{
		hex.EncodeToString(iv),
		hex.EncodeToString(salt),
		hex.EncodeToString(tag),
		hex.EncodeToString(ciphertext),
	}, ":"), nil
}

// Decrypt abre um envelope. Formato errado (número de campos, hex inválido,
// tamanhos) é ErrEnvelopeFormat; falha de autenticação (tamper ou master key
// errada) é ErrEnvelopeIntegrity.
func (s *Service) Decrypt(envelope string) ([]byte, error) {
	parts := strings.Split(envelope, ":")
	if len(parts) != 4 {
		return nil, domain.ErrEnvelopeFormat
	}

	iv, errIV := hex.DecodeString(parts[0])
	salt, errSalt := hex.DecodeString(parts[1])
	tag, errTag := hex.DecodeString(parts[2])
	ciphertext, errCT := hex.DecodeString(parts[3])
	if errIV != nil || errSalt != nil || errTag != nil || errCT != nil {
		return nil, domain.ErrEnvelopeFormat
	}
	if len(iv) != ivLength || len(tag) != tagLength {
		return nil, domain.ErrEnvelopeFormat
	}

	aead, err := s.aead(salt)
	if err != nil {
		return nil, err
	}

	secret, err := aead.Open(nil, iv, append(ciphertext, tag...), nil)
	if err != nil {
		return nil, domain.ErrEnvelopeIntegrity
	}
	return secret, nil
}

func (s *Service) aead(salt []byte) (cipher.AEAD, error) {
	key := pbkdf2.Key(s.masterKey, salt, iterations, keyLength, sha256.New)
	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, fmt.Errorf("failed to init cipher: %w", err)
	}
	// GCM com nonce de 16 bytes para casar com o formato de envelope existente.
	return cipher.NewGCMWithNonceSize(block, ivLength)
}

// Zero apaga material de chave da memória assim que ele deixa de ser
// necessário. O chamador deve usar em defer logo após obter o segredo.
func Zero(b []byte) {
	for i := range b {
		b[i] = 0
	}
}
