package stacks

import (
	"github.com/aws/aws-cdk-go/awscdk/v2"
	"github.com/aws/aws-cdk-go/awscdk/v2/awssns"
	"github.com/aws/aws-cdk-go/awscdk/v2/awssnssubscriptions"
	"github.com/aws/aws-cdk-go/awscdk/v2/awssqs"
	"github.com/aws/constructs-go/constructs/v10"
	"github.com/aws/jsii-runtime-go"

	"github.com/reginaldFerland/cdk/infra/manifest"
)

func NewTopic(scope constructs.Construct, id string, spec manifest.Topic) awssns.Topic {
	return awssns.NewTopic(scope, jsii.String(id), &awssns.TopicProps{
		TopicName: jsii.String(spec.TopicName),
	})
}

func NewQueue(scope constructs.Construct, id string, spec manifest.Queue) awssqs.Queue {
	props := &awssqs.QueueProps{
		QueueName: jsii.String(spec.QueueName),
	}
	if spec.VisibilityTimeoutSeconds > 0 {
		props.VisibilityTimeout = awscdk.Duration_Seconds(jsii.Number(float64(spec.VisibilityTimeoutSeconds)))
	}
	if spec.RetentionPeriodDays > 0 {
		props.RetentionPeriod = awscdk.Duration_Days(jsii.Number(float64(spec.RetentionPeriodDays)))
	}
	return awssqs.NewQueue(scope, jsii.String(id), props)
}

// Subscribe delivers every message published on the topic to the queue.
func Subscribe(topic awssns.ITopic, queue awssqs.IQueue) {
	topic.AddSubscription(awssnssubscriptions.NewSqsSubscription(queue, nil))
}
