package manifest_test

import (
	"bytes"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"

	"github.com/reginaldFerland/cdk/infra/manifest"
)

func finalized(t *testing.T) *manifest.Manifest {
	t.Helper()
	c := manifest.NewCatalog()
	s, err := c.NewStack(service)
	require.NoError(t, err)
	topic, _ := s.Declare("events", manifest.Topic{TopicName: "events"})
	queue, _ := s.Declare("jobs", manifest.Queue{QueueName: "jobs", VisibilityTimeoutSeconds: 30})
	_, _ = s.Declare("events-to-jobs", manifest.Subscription{Topic: topic, Queue: queue})
	_, _ = s.Publish("eventsArn", "arn:events")
	m, err := s.Finalize()
	require.NoError(t, err)
	return m
}

func TestManifestViews(t *testing.T) {
	m := finalized(t)

	assert.Equal(t, 3, m.Len())
	assert.Equal(t, 1, m.Count(manifest.KindSubscription))
	assert.Len(t, m.Edges(), 2)
	_, ok := m.Resource("nope")
	assert.False(t, ok)
}

func TestManifestResourcesDoNotAliasSpecs(t *testing.T) {
	// GIVEN a finalized stack whose specs hold slices and maps
	c := manifest.NewCatalog()
	s, err := c.NewStack(service)
	require.NoError(t, err)
	_, _ = s.Declare("db", manifest.DatabaseCluster{
		Readers:          []string{"reader-1"},
		DedicatedNetwork: &manifest.Network{Subnets: []manifest.Subnet{{Name: "private"}}},
	})
	_, _ = s.Declare("svc", manifest.ContainerService{
		Environment: map[string]string{"A": "1"},
		Image:       manifest.ImageSource{BuildArgs: map[string]string{"B": "2"}},
	})
	m, err := s.Finalize()
	require.NoError(t, err)

	// WHEN a caller mutates what it was handed
	db := m.Resources()[0].Spec.(manifest.DatabaseCluster)
	db.Readers[0] = "changed"
	db.DedicatedNetwork.Subnets[0].Name = "changed"
	res, _ := m.Resource("svc")
	svc := res.Spec.(manifest.ContainerService)
	svc.Environment["A"] = "changed"
	svc.Image.BuildArgs["B"] = "changed"

	// THEN the manifest is unchanged
	db = m.Resources()[0].Spec.(manifest.DatabaseCluster)
	assert.Equal(t, []string{"reader-1"}, db.Readers)
	assert.Equal(t, "private", db.DedicatedNetwork.Subnets[0].Name)
	res, _ = m.Resource("svc")
	svc = res.Spec.(manifest.ContainerService)
	assert.Equal(t, "1", svc.Environment["A"])
	assert.Equal(t, "2", svc.Image.BuildArgs["B"])
}

func TestWriteJSON(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, manifest.WriteJSON(&buf, finalized(t)))

	var docs []struct {
		Stack     string `json:"stack"`
		Resources []struct {
			Name      string   `json:"name"`
			Kind      string   `json:"kind"`
			DependsOn []string `json:"dependsOn"`
		} `json:"resources"`
		Parameters []manifest.ParameterEntry `json:"parameters"`
	}
	require.NoError(t, json.Unmarshal(buf.Bytes(), &docs))
	require.Len(t, docs, 1)
	assert.Equal(t, "app-notification-test", docs[0].Stack)
	require.Len(t, docs[0].Resources, 3)
	assert.Equal(t, "Subscription", docs[0].Resources[2].Kind)
	assert.Equal(t, []string{
		"app-notification-test/Topic/events",
		"app-notification-test/Queue/jobs",
	}, docs[0].Resources[2].DependsOn)
	assert.Equal(t, "/test/app/notification/eventsArn", docs[0].Parameters[0].Path)
}

func TestWriteYAMLEmitsOneDocumentPerManifest(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, manifest.WriteYAML(&buf, finalized(t), finalized(t)))

	dec := yaml.NewDecoder(&buf)
	n := 0
	for {
		var doc map[string]any
		if err := dec.Decode(&doc); err != nil {
			break
		}
		assert.Equal(t, "app-notification-test", doc["stack"])
		n++
	}
	assert.Equal(t, 2, n)
}

func TestCredentialsPasswordIsNotExported(t *testing.T) {
	c := manifest.NewCatalog()
	s, _ := c.NewStack(service)
	_, _ = s.Declare("db", manifest.DatabaseCluster{
		Identifier:  "db",
		Credentials: manifest.Credentials{Username: "admin", Password: "hunter2"},
		Writer:      "writer",
	})
	m, err := s.Finalize()
	require.NoError(t, err)

	out, err := json.Marshal(m)
	require.NoError(t, err)
	assert.NotContains(t, string(out), "hunter2")

	out, err = yaml.Marshal(m)
	require.NoError(t, err)
	assert.NotContains(t, string(out), "hunter2")
}
