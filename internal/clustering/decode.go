package clustering

import (
	"fmt"

	"github.com/google/uuid"

	"github.com/IonMich/instructor-pilot/internal/versions"
)

func decodeResult(envelope computeResponse) (*Result, error) {
	result := &Result{
		Versions: make([]versions.VersionSpec, 0, len(envelope.Versions)),
	}

	for _, v := range envelope.Versions {
		if v.Name == "" {
			return nil, fmt.Errorf("%w: version with empty name", ErrInvalidResponse)
		}

		spec := versions.VersionSpec{
			Name:         v.Name,
			VersionImage: v.VersionImage,
			Members:      make([]uuid.UUID, 0, len(v.Members)),
		}

		for _, m := range v.Members {
			id, err := uuid.Parse(m)
			if err != nil {
				return nil, fmt.Errorf("%w: member id %q", ErrInvalidResponse, m)
			}
			spec.Members = append(spec.Members, id)
		}

		result.Versions = append(result.Versions, spec)
	}

	return result, nil
}
