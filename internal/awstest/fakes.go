package awstest

import (
	"context"
	"sync"

	"github.com/aws/aws-sdk-go-v2/service/cloudwatch"
	"github.com/aws/aws-sdk-go-v2/service/sesv2"
	"github.com/aws/aws-sdk-go-v2/service/sqs"
)

// FakeSQS records sent messages and optionally fails every send.
type FakeSQS struct {
	mu       sync.Mutex
	Err      error
	Messages []sqs.SendMessageInput
}

func (f *FakeSQS) SendMessage(ctx context.Context, params *sqs.SendMessageInput, optFns ...func(*sqs.Options)) (*sqs.SendMessageOutput, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.Err != nil {
		return nil, f.Err
	}
	f.Messages = append(f.Messages, *params)
	return &sqs.SendMessageOutput{}, nil
}

// Sent returns the recorded message bodies.
func (f *FakeSQS) Sent() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	bodies := make([]string, 0, len(f.Messages))
	for _, m := range f.Messages {
		if m.MessageBody != nil {
			bodies = append(bodies, *m.MessageBody)
		}
	}
	return bodies
}

// FakeSES records sent emails and optionally fails every send.
type FakeSES struct {
	mu     sync.Mutex
	Err    error
	Emails []sesv2.SendEmailInput
}

func (f *FakeSES) SendEmail(ctx context.Context, params *sesv2.SendEmailInput, optFns ...func(*sesv2.Options)) (*sesv2.SendEmailOutput, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.Err != nil {
		return nil, f.Err
	}
	f.Emails = append(f.Emails, *params)
	return &sesv2.SendEmailOutput{}, nil
}

// Count returns how many emails were accepted.
func (f *FakeSES) Count() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.Emails)
}

// FakeCloudWatch records published metric data.
type FakeCloudWatch struct {
	mu   sync.Mutex
	Err  error
	Data []cloudwatch.PutMetricDataInput
}

func (f *FakeCloudWatch) PutMetricData(ctx context.Context, params *cloudwatch.PutMetricDataInput, optFns ...func(*cloudwatch.Options)) (*cloudwatch.PutMetricDataOutput, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.Err != nil {
		return nil, f.Err
	}
	f.Data = append(f.Data, *params)
	return &cloudwatch.PutMetricDataOutput{}, nil
}

// Count returns how many metric batches were accepted.
func (f *FakeCloudWatch) Count() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.Data)
}
