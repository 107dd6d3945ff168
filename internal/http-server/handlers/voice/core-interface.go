package voice

import (
	"PayIVR/entity"
	"PayIVR/internal/twiml"
	"context"
)

type Core interface {
	HandleStep(ctx context.Context, req *entity.StepRequest) (*twiml.Response, error)
}
