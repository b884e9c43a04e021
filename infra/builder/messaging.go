package builder

import (
	"github.com/reginaldFerland/cdk/infra/config"
	"github.com/reginaldFerland/cdk/infra/manifest"
)

// WithSnsTopic declares a topic and publishes its ARN as {name}Arn. The
// resource is named after the kind so a queue may share the name.
func (b *Builder) WithSnsTopic(name string, out *manifest.Ref) *Builder {
	const op = "WithSnsTopic"
	if !b.ok() {
		return b
	}
	if name == "" {
		return b.fail(op, "topic name is empty", nil)
	}

	ref, outputs, ok := b.declare(op, b.id.ResourceName(name+"-topic"), manifest.Topic{TopicName: name})
	if !ok || !b.publish(op, name+"Arn", outputs, OutputArn) {
		return b
	}
	bind(out, ref)
	return b
}

// WithSqsQueue declares a queue and publishes its URL as {name}Url.
func (b *Builder) WithSqsQueue(name string, out *manifest.Ref) *Builder {
	const op = "WithSqsQueue"
	if !b.ok() {
		return b
	}
	if name == "" {
		return b.fail(op, "queue name is empty", nil)
	}

	settings := config.DefaultMessagingConfig()
	if s, ok := b.cfg.(config.MessagingSettings); ok {
		settings = s.MessagingConfig()
	}

	ref, outputs, ok := b.declare(op, b.id.ResourceName(name+"-queue"), manifest.Queue{
		QueueName:                name,
		VisibilityTimeoutSeconds: settings.VisibilityTimeoutSeconds,
		RetentionPeriodDays:      settings.RetentionPeriodDays,
	})
	if !ok || !b.publish(op, name+"Url", outputs, OutputUrl) {
		return b
	}
	bind(out, ref)
	return b
}

// WithSubscription delivers the messages of a topic to a queue. Both must
// already be declared, in this stack or another one of the run.
func (b *Builder) WithSubscription(topic, queue manifest.Ref) *Builder {
	const op = "WithSubscription"
	if !b.ok() ||
		!b.requireRef(op, "topic", topic, manifest.KindTopic) ||
		!b.requireRef(op, "queue", queue, manifest.KindQueue) {
		return b
	}

	var names [2]string
	for i, ref := range []manifest.Ref{topic, queue} {
		res, ok := b.catalog.Resolve(ref)
		if !ok {
			return b.fail(op, ref.String()+" is not declared", nil)
		}
		switch spec := res.Spec.(type) {
		case manifest.Topic:
			names[i] = spec.TopicName
		case manifest.Queue:
			names[i] = spec.QueueName
		}
	}

	b.declare(op, b.id.ResourceName(names[0]+"-to-"+names[1]), manifest.Subscription{
		Topic: topic,
		Queue: queue,
	})
	return b
}
