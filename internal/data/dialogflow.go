package data

import (
	"context"
	"errors"
	"fmt"

	"github.com/carokun/sachathescheduler/internal/biz/domain"
	"github.com/carokun/sachathescheduler/internal/biz/repo"
	"github.com/carokun/sachathescheduler/internal/infra/dialogflow"
)

// dialogflowRepo implements the classifier repository on api.ai
type dialogflowRepo struct {
	client *dialogflow.Client
}

// NewDialogflowRepo creates a Dialogflow classifier repository
func NewDialogflowRepo(client *dialogflow.Client) repo.ClassifierRepo {
	return &dialogflowRepo{client: client}
}

// Classify sends the utterance within the account's session
func (r *dialogflowRepo) Classify(ctx context.Context, req domain.ClassifyRequest) (*domain.Intent, error) {
	resp, err := r.client.Query(ctx, req.SessionID, req.Utterance, req.Timezone)
	if err != nil {
		var me *dialogflow.MalformedError
		if errors.As(err, &me) {
			return nil, fmt.Errorf("%w: %v", domain.ErrClassifierMalformed, err)
		}
		return nil, err
	}

	return &domain.Intent{
		ActionIncomplete: resp.Result.ActionIncomplete,
		Action:           resp.Result.Action,
		Parameters:       resp.Result.Parameters,
		Speech:           resp.Result.Fulfillment.Speech,
	}, nil
}
