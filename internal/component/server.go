package component

type UserID struct {
	Username string `mapstructure:"username"`
	Password string `mapstructure:"password"`
}

type Server struct {
	Host            string   `mapstructure:"host"`
	Port            int      `mapstructure:"port"`
	NamespaceURI    string   `mapstructure:"namespace_uri"`
	Users           []UserID `mapstructure:"users"`
	AdditionalHosts []string `mapstructure:"additional_hosts"`
	AdditionalIPs   []string `mapstructure:"additional_ips"`
	CertFile        string   `mapstructure:"cert_file"`
	KeyFile         string   `mapstructure:"key_file"`
}
