package manifest

// SubnetType selects the routing of a subnet group.
type SubnetType string

const (
	SubnetPublic            SubnetType = "public"
	SubnetPrivateWithEgress SubnetType = "private-with-egress"
	SubnetIsolated          SubnetType = "isolated"
)

// RemovalPolicy controls what happens to a resource when its stack is deleted.
type RemovalPolicy string

const (
	RemovalDestroy RemovalPolicy = "destroy"
	RemovalRetain  RemovalPolicy = "retain"
)

// Subnet is one subnet group of a Network.
type Subnet struct {
	Name     string     `json:"name" yaml:"name"`
	Type     SubnetType `json:"type" yaml:"type"`
	CidrMask int        `json:"cidrMask,omitempty" yaml:"cidrMask,omitempty"`
}

// Network is a virtual private network.
type Network struct {
	VpcName     string   `json:"vpcName,omitempty" yaml:"vpcName,omitempty"`
	CIDR        string   `json:"cidr" yaml:"cidr"`
	MaxAzs      int      `json:"maxAzs,omitempty" yaml:"maxAzs,omitempty"`
	ReservedAzs int      `json:"reservedAzs,omitempty" yaml:"reservedAzs,omitempty"`
	NatGateways int      `json:"natGateways,omitempty" yaml:"natGateways,omitempty"`
	Subnets     []Subnet `json:"subnets" yaml:"subnets"`
}

func (Network) Kind() Kind        { return KindNetwork }
func (Network) References() []Ref { return nil }

// ComputeCluster is a container orchestration cluster placed in a Network.
type ComputeCluster struct {
	ClusterName       string `json:"clusterName" yaml:"clusterName"`
	Network           Ref    `json:"network" yaml:"network"`
	ContainerInsights bool   `json:"containerInsights" yaml:"containerInsights"`
}

func (ComputeCluster) Kind() Kind          { return KindComputeCluster }
func (c ComputeCluster) References() []Ref { return []Ref{c.Network} }

// ContainerRegistry is a private image repository.
type ContainerRegistry struct {
	RepositoryName  string        `json:"repositoryName" yaml:"repositoryName"`
	KMSEncryption   bool          `json:"kmsEncryption" yaml:"kmsEncryption"`
	ImageScanOnPush bool          `json:"imageScanOnPush" yaml:"imageScanOnPush"`
	MaxImageCount   int           `json:"maxImageCount" yaml:"maxImageCount"`
	ImmutableTags   bool          `json:"immutableTags" yaml:"immutableTags"`
	RemovalPolicy   RemovalPolicy `json:"removalPolicy" yaml:"removalPolicy"`
}

func (ContainerRegistry) Kind() Kind        { return KindContainerRegistry }
func (ContainerRegistry) References() []Ref { return nil }

// SearchDomain is a managed OpenSearch domain.
type SearchDomain struct {
	DomainName             string `json:"domainName" yaml:"domainName"`
	EngineVersion          string `json:"engineVersion" yaml:"engineVersion"`
	VolumeSizeGiB          int    `json:"volumeSizeGiB" yaml:"volumeSizeGiB"`
	DataNodeInstanceType   string `json:"dataNodeInstanceType" yaml:"dataNodeInstanceType"`
	MasterNodeInstanceType string `json:"masterNodeInstanceType" yaml:"masterNodeInstanceType"`
	DataNodes              int    `json:"dataNodes" yaml:"dataNodes"`
	MasterNodes            int    `json:"masterNodes" yaml:"masterNodes"`
	MultiAzWithStandby     bool   `json:"multiAzWithStandby" yaml:"multiAzWithStandby"`
	ZoneAwareness          bool   `json:"zoneAwareness" yaml:"zoneAwareness"`
	EncryptionAtRest       bool   `json:"encryptionAtRest" yaml:"encryptionAtRest"`
	EnforceHTTPS           bool   `json:"enforceHttps" yaml:"enforceHttps"`
	NodeToNodeEncryption   bool   `json:"nodeToNodeEncryption" yaml:"nodeToNodeEncryption"`
}

func (SearchDomain) Kind() Kind        { return KindSearchDomain }
func (SearchDomain) References() []Ref { return nil }

// Credentials describe the master user of a database cluster. An empty
// Password asks for a generated secret.
type Credentials struct {
	Username   string `json:"username" yaml:"username"`
	SecretName string `json:"secretName,omitempty" yaml:"secretName,omitempty"`
	Password   string `json:"-" yaml:"-"`
}

// Generated reports whether the password is generated at deploy time.
func (c Credentials) Generated() bool {
	return c.Password == ""
}

// DatabaseCluster is an Aurora PostgreSQL serverless v2 cluster. When Network
// is zero the cluster runs in DedicatedNetwork.
type DatabaseCluster struct {
	Identifier          string        `json:"identifier" yaml:"identifier"`
	EngineVersion       string        `json:"engineVersion" yaml:"engineVersion"`
	MinCapacity         float64       `json:"minCapacity" yaml:"minCapacity"`
	MaxCapacity         float64       `json:"maxCapacity" yaml:"maxCapacity"`
	DefaultDatabaseName string        `json:"defaultDatabaseName" yaml:"defaultDatabaseName"`
	BackupRetentionDays int           `json:"backupRetentionDays" yaml:"backupRetentionDays"`
	StorageEncrypted    bool          `json:"storageEncrypted" yaml:"storageEncrypted"`
	DeletionProtection  bool          `json:"deletionProtection" yaml:"deletionProtection"`
	RemovalPolicy       RemovalPolicy `json:"removalPolicy" yaml:"removalPolicy"`
	Credentials         Credentials   `json:"credentials" yaml:"credentials"`
	Network             Ref           `json:"network,omitempty" yaml:"network,omitempty"`
	DedicatedNetwork    *Network      `json:"dedicatedNetwork,omitempty" yaml:"dedicatedNetwork,omitempty"`
	Writer              string        `json:"writer" yaml:"writer"`
	Readers             []string      `json:"readers,omitempty" yaml:"readers,omitempty"`
}

func (DatabaseCluster) Kind() Kind          { return KindDatabaseCluster }
func (d DatabaseCluster) References() []Ref { return []Ref{d.Network} }

// Instances returns the number of instances in the cluster, writer included.
func (d DatabaseCluster) Instances() int {
	return 1 + len(d.Readers)
}

// HasInstance reports whether an instance with the given name exists.
func (d DatabaseCluster) HasInstance(name string) bool {
	if d.Writer == name {
		return true
	}
	for _, r := range d.Readers {
		if r == name {
			return true
		}
	}
	return false
}

// PortMapping exposes a container port.
type PortMapping struct {
	ContainerPort int    `json:"containerPort" yaml:"containerPort"`
	HostPort      int    `json:"hostPort" yaml:"hostPort"`
	Protocol      string `json:"protocol" yaml:"protocol"`
}

// HealthCheck is a container health check.
type HealthCheck struct {
	Command            []string `json:"command" yaml:"command"`
	IntervalSeconds    int      `json:"intervalSeconds" yaml:"intervalSeconds"`
	TimeoutSeconds     int      `json:"timeoutSeconds" yaml:"timeoutSeconds"`
	Retries            int      `json:"retries" yaml:"retries"`
	StartPeriodSeconds int      `json:"startPeriodSeconds" yaml:"startPeriodSeconds"`
}

// ImageSource tells where the container image comes from: a local Docker build
// context when Directory is set, otherwise a tag in Registry.
type ImageSource struct {
	Directory  string            `json:"directory,omitempty" yaml:"directory,omitempty"`
	Dockerfile string            `json:"dockerfile,omitempty" yaml:"dockerfile,omitempty"`
	BuildArgs  map[string]string `json:"buildArgs,omitempty" yaml:"buildArgs,omitempty"`
	Registry   Ref               `json:"registry,omitempty" yaml:"registry,omitempty"`
	Tag        string            `json:"tag,omitempty" yaml:"tag,omitempty"`
}

// ContainerService is a Fargate service running one container.
type ContainerService struct {
	ServiceName            string            `json:"serviceName" yaml:"serviceName"`
	TaskFamily             string            `json:"taskFamily" yaml:"taskFamily"`
	ContainerName          string            `json:"containerName" yaml:"containerName"`
	Cluster                Ref               `json:"cluster" yaml:"cluster"`
	Cpu                    int               `json:"cpu" yaml:"cpu"`
	MemoryMiB              int               `json:"memoryMiB" yaml:"memoryMiB"`
	DesiredCount           int               `json:"desiredCount" yaml:"desiredCount"`
	CPUArchitecture        string            `json:"cpuArchitecture" yaml:"cpuArchitecture"`
	Image                  ImageSource       `json:"image" yaml:"image"`
	Ports                  []PortMapping     `json:"ports" yaml:"ports"`
	HealthCheck            HealthCheck       `json:"healthCheck" yaml:"healthCheck"`
	ReadonlyRootFilesystem bool              `json:"readonlyRootFilesystem" yaml:"readonlyRootFilesystem"`
	Environment            map[string]string `json:"environment,omitempty" yaml:"environment,omitempty"`
	SubnetType             SubnetType        `json:"subnetType" yaml:"subnetType"`
}

func (ContainerService) Kind() Kind { return KindContainerService }
func (s ContainerService) References() []Ref {
	return []Ref{s.Cluster, s.Image.Registry}
}

// Topic is a pub/sub topic.
type Topic struct {
	TopicName string `json:"topicName" yaml:"topicName"`
}

func (Topic) Kind() Kind        { return KindTopic }
func (Topic) References() []Ref { return nil }

// Queue is a message queue.
type Queue struct {
	QueueName                string `json:"queueName" yaml:"queueName"`
	VisibilityTimeoutSeconds int    `json:"visibilityTimeoutSeconds,omitempty" yaml:"visibilityTimeoutSeconds,omitempty"`
	RetentionPeriodDays      int    `json:"retentionPeriodDays,omitempty" yaml:"retentionPeriodDays,omitempty"`
}

func (Queue) Kind() Kind        { return KindQueue }
func (Queue) References() []Ref { return nil }

// Subscription delivers messages of one Topic to one Queue.
type Subscription struct {
	Topic Ref `json:"topic" yaml:"topic"`
	Queue Ref `json:"queue" yaml:"queue"`
}

func (Subscription) Kind() Kind          { return KindSubscription }
func (s Subscription) References() []Ref { return []Ref{s.Topic, s.Queue} }
