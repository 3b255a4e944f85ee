package downloader

// RotateCredential picks the credential for the chapter at ordinal
// (1-based) by plain round robin. No credentials yields "".
func RotateCredential(creds []string, ordinal int) string {
	if len(creds) == 0 {
		return ""
	}

	i := (ordinal - 1) % len(creds)
	if i < 0 {
		i += len(creds)
	}

	return creds[i]
}
