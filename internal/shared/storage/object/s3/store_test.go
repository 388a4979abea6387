package s3

import (
	"testing"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	s3types "github.com/aws/aws-sdk-go-v2/service/s3/types"
)

func TestApplyPrefix(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		prefix string
		key    string
		want   string
	}{
		{name: "no prefix", prefix: "", key: "user/file.pdf", want: "user/file.pdf"},
		{name: "simple prefix", prefix: "root", key: "user/file.pdf", want: "root/user/file.pdf"},
		{name: "prefix trailing slash", prefix: "root/", key: "user/file.pdf", want: "root/user/file.pdf"},
		{name: "prefix and key slashes", prefix: "/root/", key: "/user/file.pdf", want: "root/user/file.pdf"},
		{name: "nested prefix", prefix: "root/sub", key: "user/file.pdf", want: "root/sub/user/file.pdf"},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			if got := applyPrefix(tt.prefix, tt.key); got != tt.want {
				t.Fatalf("applyPrefix(%q, %q) = %q, want %q", tt.prefix, tt.key, got, tt.want)
			}
		})
	}
}

func TestApplyEncryption(t *testing.T) {
	t.Parallel()

	kms := &s3.PutObjectInput{}
	applyEncryption(kms, "key-1")
	if kms.ServerSideEncryption != s3types.ServerSideEncryptionAwsKms || aws.ToString(kms.SSEKMSKeyId) != "key-1" {
		t.Fatalf("expected kms encryption, got %+v", kms)
	}

	aes := &s3.PutObjectInput{}
	applyEncryption(aes, "")
	if aes.ServerSideEncryption != s3types.ServerSideEncryptionAes256 || aes.SSEKMSKeyId != nil {
		t.Fatalf("expected AES256 encryption, got %+v", aes)
	}
}

func TestNormalizePrefix(t *testing.T) {
	t.Parallel()

	if got := normalizePrefix(" /archive/ "); got != "archive" {
		t.Fatalf("normalizePrefix = %q", got)
	}
}
