package classpath

import (
	"fmt"

	"go.mozilla.org/pkcs7"
)

// VerifyJarSignature checks a jar's detached PKCS#7 signature block (e.g.
// META-INF/CERT.RSA) against the signed content (conventionally
// META-INF/CERT.SF). Grounded on saferwall-pe's use of the same
// go.mozilla.org/pkcs7 library to verify PE Authenticode signatures: both
// are "detached signature over a binary payload" problems, just for
// different container formats.
func VerifyJarSignature(a *ArchiveEntry, signatureFile, signedContentFile string) error {
	sigBytes, ok, err := a.SignatureFile(signatureFile)
	if err != nil {
		return fmt.Errorf("read signature block %s: %w", signatureFile, err)
	}
	if !ok {
		return fmt.Errorf("signature block %s not found in %s", signatureFile, a.path)
	}

	content, ok, err := a.SignatureFile(signedContentFile)
	if err != nil {
		return fmt.Errorf("read signed content %s: %w", signedContentFile, err)
	}
	if !ok {
		return fmt.Errorf("signed content %s not found in %s", signedContentFile, a.path)
	}

	p7, err := pkcs7.Parse(sigBytes)
	if err != nil {
		return fmt.Errorf("parse PKCS#7 signature %s: %w", signatureFile, err)
	}
	p7.Content = content

	if err := p7.Verify(); err != nil {
		return fmt.Errorf("jar signature verification failed for %s: %w", a.path, err)
	}
	return nil
}
