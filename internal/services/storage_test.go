package services

import (
	"strings"
	"testing"

	"skillbridge-server/internal/config"

	"github.com/stretchr/testify/assert"
)

func TestGenerateUniqueFilename(t *testing.T) {
	a := GenerateUniqueFilename("photo.JPG")
	b := GenerateUniqueFilename("photo.JPG")

	assert.True(t, strings.HasSuffix(a, ".jpg"))
	assert.NotEqual(t, a, b)
}

func TestGenerateUniqueFilenameNoExtension(t *testing.T) {
	name := GenerateUniqueFilename("avatar")
	assert.NotContains(t, name, ".")
}

func TestExtractKeyFromURL(t *testing.T) {
	cfg := &config.Config{S3Bucket: "skillbridge-avatars", AWSRegion: "us-east-1"}
	s := &StorageService{cfg: cfg}

	key := s.extractKeyFromURL("https://skillbridge-avatars.s3.us-east-1.amazonaws.com/abc.png")
	assert.Equal(t, "abc.png", key)

	cfg.MinIOEndpoint = "localhost:9000"
	key = s.extractKeyFromURL("http://localhost:9000/skillbridge-avatars/def.png")
	assert.Equal(t, "def.png", key)

	assert.Empty(t, s.extractKeyFromURL("https://elsewhere.example.com/file.png"))
}
