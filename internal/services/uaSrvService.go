package services

import (
	"crypto/rand"
	"crypto/rsa"
	"crypto/sha1"
	"crypto/x509"
	"crypto/x509/pkix"
	"encoding/pem"
	"fmt"
	"math/big"
	"net"
	"net/url"
	"os"
	"path/filepath"
	"time"

	"github.com/amine-amaach/simulators/ioTSensorsUaBridge/internal/component"
	"github.com/amine-amaach/simulators/ioTSensorsUaBridge/internal/model"
	"github.com/awcullen/opcua/server"
	"github.com/awcullen/opcua/ua"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
	"golang.org/x/crypto/bcrypt"
)

const appName = "IoTSensorsUaBridge"

// UaSrvService owns the OPC UA server exposing the bridged address space.
type UaSrvService struct {
	server *server.Server
	nsi    uint16
}

func NewUaSrvService(cfg *component.Server, logger *logrus.Logger) (*UaSrvService, error) {
	users, err := HashPasswords(cfg.Users)
	if err != nil {
		return nil, err
	}
	if err := ensurePKI(cfg, logger); err != nil {
		return nil, errors.Wrap(err, "creating server certificate")
	}

	endpointURL := fmt.Sprintf("opc.tcp://%s:%d", cfg.Host, cfg.Port)
	srv, err := server.New(
		ua.ApplicationDescription{
			ApplicationURI: fmt.Sprintf("urn:%s:%s", cfg.Host, appName),
			ProductURI:     "http://github.com/awcullen/opcua",
			ApplicationName: ua.LocalizedText{
				Text:   fmt.Sprintf("%s@%s", appName, cfg.Host),
				Locale: "en",
			},
			ApplicationType: ua.ApplicationTypeServer,
			DiscoveryURLs:   []string{endpointURL},
		},
		cfg.CertFile,
		cfg.KeyFile,
		endpointURL,
		server.WithBuildInfo(
			ua.BuildInfo{
				ProductURI:       "http://github.com/awcullen/opcua",
				ManufacturerName: "awcullen",
				ProductName:      appName,
				SoftwareVersion:  "latest",
			}),
		server.WithAnonymousIdentity(true),
		server.WithAuthenticateUserNameIdentityFunc(func(userIdentity ua.UserNameIdentity, applicationURI string, endpointURL string) error {
			if code := Authenticate(users, userIdentity); code.IsBad() {
				logger.WithFields(logrus.Fields{
					"category": "server",
					"User":     userIdentity.UserName,
					"App":      applicationURI,
				}).Warnln("Login rejected ⛔")
				return code.ToUA()
			}
			return nil
		}),
		server.WithSecurityPolicyNone(true),
		server.WithInsecureSkipVerify(),
		server.WithServerDiagnostics(true),
	)
	if err != nil {
		return nil, errors.Wrap(err, "creating opcua server")
	}
	return &UaSrvService{
		server: srv,
		nsi:    srv.NamespaceManager().Add(cfg.NamespaceURI),
	}, nil
}

func (s *UaSrvService) GetServer() *server.Server {
	return s.server
}

// NamespaceIndex is the index of the configured namespace URI.
func (s *UaSrvService) NamespaceIndex() uint16 {
	return s.nsi
}

// ListenAndServe blocks until Close is called.
func (s *UaSrvService) ListenAndServe(logger *logrus.Logger) {
	logger.WithFields(logrus.Fields{
		"category": "network",
		"Server":   s.server.LocalDescription().ApplicationName.Text,
		"Endpoint": s.server.EndpointURL(),
	}).Infoln("Starting server 🚀")
	if err := s.server.ListenAndServe(); err != ua.BadServerHalted {
		logger.WithFields(logrus.Fields{
			"category": "network",
			"Err":      err,
		}).Errorln("Server stopped unexpectedly ⛔")
	}
}

func (s *UaSrvService) Close() error {
	return s.server.Close()
}

// HashPasswords returns the identities with bcrypt hashed passwords.
func HashPasswords(users []component.UserID) ([]ua.UserNameIdentity, error) {
	out := make([]ua.UserNameIdentity, 0, len(users))
	for _, u := range users {
		hash, err := bcrypt.GenerateFromPassword([]byte(u.Password), 8)
		if err != nil {
			return nil, errors.Wrapf(err, "hashing password of %s", u.Username)
		}
		out = append(out, ua.UserNameIdentity{UserName: u.Username, Password: string(hash)})
	}
	return out, nil
}

// Authenticate checks a login against hashed identities.
func Authenticate(users []ua.UserNameIdentity, login ua.UserNameIdentity) model.StatusCode {
	for _, user := range users {
		if user.UserName != login.UserName {
			continue
		}
		if bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(login.Password)) == nil {
			return model.Good
		}
	}
	return model.BadUserAccessDenied
}

func ensurePKI(cfg *component.Server, logger *logrus.Logger) error {
	if _, err := os.Stat(cfg.CertFile); err == nil {
		return nil
	}
	for _, dir := range []string{filepath.Dir(cfg.CertFile), filepath.Dir(cfg.KeyFile)} {
		if err := os.MkdirAll(dir, os.ModeDir|0755); err != nil {
			return err
		}
	}
	logger.WithFields(logrus.Fields{
		"category": "server",
		"Cert":     cfg.CertFile,
	}).Infoln("Creating self-signed server certificate 🔔")
	return createNewCertificate(cfg, logger)
}

func createNewCertificate(cfg *component.Server, logger *logrus.Logger) error {
	key, err := rsa.GenerateKey(rand.Reader, 2048)
	if err != nil {
		return err
	}

	applicationURI, err := url.Parse(fmt.Sprintf("urn:%s:%s", cfg.Host, appName))
	if err != nil {
		return err
	}
	serialNumber, err := rand.Int(rand.Reader, new(big.Int).Lsh(big.NewInt(1), 128))
	if err != nil {
		return err
	}
	subjectKeyHash := sha1.New()
	subjectKeyHash.Write(key.PublicKey.N.Bytes())
	subjectKeyId := subjectKeyHash.Sum(nil)

	dnsNames := append([]string{cfg.Host}, cfg.AdditionalHosts...)

	ipAddresses := make([]net.IP, 0, len(cfg.AdditionalIPs)+1)
	if ip := localIP(); ip != nil {
		ipAddresses = append(ipAddresses, ip)
	}
	for _, s := range cfg.AdditionalIPs {
		ip := net.ParseIP(s)
		if ip == nil {
			logger.WithField("IP", s).Warnln("Invalid additional IP, skipped ⛔")
			continue
		}
		ipAddresses = append(ipAddresses, ip)
	}

	uris := []*url.URL{applicationURI}
	for _, h := range cfg.AdditionalHosts {
		if u, err := url.Parse(fmt.Sprintf("urn:%s:%s", h, appName)); err == nil {
			uris = append(uris, u)
		}
	}

	template := x509.Certificate{
		SerialNumber:          serialNumber,
		Subject:               pkix.Name{CommonName: appName},
		SubjectKeyId:          subjectKeyId,
		AuthorityKeyId:        subjectKeyId,
		NotBefore:             time.Now(),
		NotAfter:              time.Now().AddDate(1, 0, 0),
		KeyUsage:              x509.KeyUsageDigitalSignature | x509.KeyUsageContentCommitment | x509.KeyUsageKeyEncipherment | x509.KeyUsageDataEncipherment | x509.KeyUsageCertSign,
		ExtKeyUsage:           []x509.ExtKeyUsage{x509.ExtKeyUsageServerAuth, x509.ExtKeyUsageClientAuth},
		BasicConstraintsValid: true,
		DNSNames:              dnsNames,
		IPAddresses:           ipAddresses,
		URIs:                  uris,
	}

	rawcrt, err := x509.CreateCertificate(rand.Reader, &template, &template, &key.PublicKey, key)
	if err != nil {
		return err
	}
	if err := writePEM(cfg.CertFile, &pem.Block{Type: "CERTIFICATE", Bytes: rawcrt}); err != nil {
		return err
	}
	return writePEM(cfg.KeyFile, &pem.Block{Type: "RSA PRIVATE KEY", Bytes: x509.MarshalPKCS1PrivateKey(key)})
}

func writePEM(path string, block *pem.Block) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := pem.Encode(f, block); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

// localIP returns the address of the outbound interface, nil when offline.
func localIP() net.IP {
	conn, err := net.Dial("udp", "8.8.8.8:53")
	if err != nil {
		return nil
	}
	defer conn.Close()
	return conn.LocalAddr().(*net.UDPAddr).IP
}
