package scoring

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"

	"talentflow-core/pkg/models"
)

// InputsHash fingerprints a candidate/job pair for cache keying. Two calls
// with identical inputs hash identically; any field change invalidates the
// cached result.
func InputsHash(candidate models.CandidateProfile, job models.JobPosting) string {
	payload, err := json.Marshal(struct {
		Candidate models.CandidateProfile `json:"candidate"`
		Job       models.JobPosting       `json:"job"`
	}{candidate, job})
	if err != nil {
		// Marshal of plain structs cannot fail; keep the signature simple.
		return ""
	}
	sum := sha256.Sum256(payload)
	return hex.EncodeToString(sum[:])
}
